package watch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWindow is returned when a TimeWindow is missing required
// attributes or carries out-of-range values.
var ErrInvalidWindow = errors.New("invalid watch window")

// Station is an opaque station short code (e.g. a CRS code).
type Station string

// State controls whether a window takes part in evaluation.
// The zero value is StateEnabled.
type State int

const (
	StateEnabled State = iota
	StateDisabled
)

func (s State) String() string {
	if s == StateDisabled {
		return "DISABLED"
	}
	return "ENABLED"
}

// ParseState maps the persisted name back to a State.
func ParseState(s string) (State, error) {
	switch strings.ToUpper(s) {
	case "", "ENABLED":
		return StateEnabled, nil
	case "DISABLED":
		return StateDisabled, nil
	default:
		return StateEnabled, fmt.Errorf("unknown watch state %q", s)
	}
}

// Key is the identity of a TimeWindow, derived from every significant
// attribute. Two windows with the same Key are the same watch.
type Key string

// TimeWindow watches a journey between Start and End (both exclusive) on the
// days in Days, notifying Target.
type TimeWindow struct {
	Start  TimeOfDay
	End    TimeOfDay
	Days   DayRange
	From   Station
	To     Station
	Target string
	// State is mutable lifecycle data and is not part of Key.
	State State
}

// Validate rejects windows that can never be dispatched correctly.
func (w TimeWindow) Validate() error {
	switch {
	case strings.TrimSpace(string(w.From)) == "":
		return fmt.Errorf("%w: missing from station", ErrInvalidWindow)
	case strings.TrimSpace(string(w.To)) == "":
		return fmt.Errorf("%w: missing to station", ErrInvalidWindow)
	case strings.TrimSpace(w.Target) == "":
		return fmt.Errorf("%w: missing notification target", ErrInvalidWindow)
	case !w.Start.Valid() || !w.End.Valid():
		return fmt.Errorf("%w: time of day out of range", ErrInvalidWindow)
	case w.Days.IsEmpty():
		return fmt.Errorf("%w: no active days", ErrInvalidWindow)
	}
	return nil
}

// Key is the identity of a window. String fields are quoted so separators
// inside a station code or target cannot make two windows collide.
func (w TimeWindow) Key() Key {
	return Key(fmt.Sprintf("%d|%d|%02x|%q|%q|%q",
		int64(w.Start), int64(w.End), uint8(w.Days&AllDays), w.From, w.To, w.Target))
}

// Journey renders the station pair as "FROM -> TO".
func (w TimeWindow) Journey() string {
	return fmt.Sprintf("%s -> %s", w.From, w.To)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s; %s @ %s -> %s", w.Journey(), w.Days, w.Start, w.End)
}
