package watch

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is an offset from local midnight.
type TimeOfDay time.Duration

const (
	StartOfDay TimeOfDay = 0
	// EndOfDay is the last representable instant of a day.
	EndOfDay TimeOfDay = TimeOfDay(24*time.Hour - time.Nanosecond)
)

// Clock builds a TimeOfDay from an hour and minute.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// TimeOfDayOf returns the wall-clock time of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()))
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDayOf(t), nil
}

// Valid reports whether t falls within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= StartOfDay && t <= EndOfDay
}

// String formats t as HH:MM.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
