package journey

import (
	"errors"
	"fmt"

	"railwatch/internal/domain/watch"
)

var ErrInvalidTiming = errors.New("invalid journey timing")

// Timing is one reported departure. The scheduled time is always present;
// expected and actual times are filled in as the operator reports them.
// A Timing is immutable once built by NewTiming.
type Timing struct {
	scheduled   watch.TimeOfDay
	expected    watch.TimeOfDay
	actual      watch.TimeOfDay
	hasExpected bool
	hasActual   bool
}

// Option sets an optional field on a Timing under construction.
type Option func(*Timing)

func WithExpected(t watch.TimeOfDay) Option {
	return func(tm *Timing) {
		tm.expected = t
		tm.hasExpected = true
	}
}

func WithActual(t watch.TimeOfDay) Option {
	return func(tm *Timing) {
		tm.actual = t
		tm.hasActual = true
	}
}

// NewTiming validates every supplied time before returning the Timing.
func NewTiming(scheduled watch.TimeOfDay, opts ...Option) (Timing, error) {
	tm := Timing{scheduled: scheduled}
	for _, opt := range opts {
		opt(&tm)
	}

	if !tm.scheduled.Valid() {
		return Timing{}, fmt.Errorf("%w: scheduled time out of range", ErrInvalidTiming)
	}
	if tm.hasExpected && !tm.expected.Valid() {
		return Timing{}, fmt.Errorf("%w: expected time out of range", ErrInvalidTiming)
	}
	if tm.hasActual && !tm.actual.Valid() {
		return Timing{}, fmt.Errorf("%w: actual time out of range", ErrInvalidTiming)
	}
	return tm, nil
}

func (t Timing) Scheduled() watch.TimeOfDay { return t.scheduled }

func (t Timing) Expected() (watch.TimeOfDay, bool) { return t.expected, t.hasExpected }

func (t Timing) Actual() (watch.TimeOfDay, bool) { return t.actual, t.hasActual }

// Departure is the time to tell the user about: the expected time when the
// operator has published one, otherwise the timetable.
func (t Timing) Departure() watch.TimeOfDay {
	if t.hasExpected {
		return t.expected
	}
	return t.scheduled
}
