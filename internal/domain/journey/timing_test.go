package journey

import (
	"errors"
	"testing"
	"time"

	"railwatch/internal/domain/watch"
)

func TestNewTiming(t *testing.T) {
	tm, err := NewTiming(watch.Clock(12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tm.Expected(); ok {
		t.Error("expected time should be absent")
	}
	if _, ok := tm.Actual(); ok {
		t.Error("actual time should be absent")
	}
	if tm.Departure() != watch.Clock(12, 0) {
		t.Errorf("Departure() = %v, want scheduled time", tm.Departure())
	}
}

func TestNewTiming_PrefersExpected(t *testing.T) {
	tm, err := NewTiming(watch.Clock(12, 0),
		WithExpected(watch.Clock(12, 7)),
		WithActual(watch.Clock(12, 8)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tm.Departure(); got != watch.Clock(12, 7) {
		t.Errorf("Departure() = %v, want 12:07", got)
	}
	if got, ok := tm.Actual(); !ok || got != watch.Clock(12, 8) {
		t.Errorf("Actual() = %v, %v", got, ok)
	}
	if tm.Scheduled() != watch.Clock(12, 0) {
		t.Errorf("Scheduled() = %v", tm.Scheduled())
	}
}

func TestNewTiming_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		scheduled watch.TimeOfDay
		opts      []Option
	}{
		{"scheduled out of range", watch.TimeOfDay(25 * time.Hour), nil},
		{"expected out of range", watch.Clock(12, 0), []Option{WithExpected(-1)}},
		{"actual out of range", watch.Clock(12, 0), []Option{WithActual(watch.TimeOfDay(48 * time.Hour))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTiming(tt.scheduled, tt.opts...); !errors.Is(err, ErrInvalidTiming) {
				t.Errorf("expected ErrInvalidTiming, got %v", err)
			}
		})
	}
}
