package watch

import (
	"testing"
	"time"
)

func TestDayRangeContains(t *testing.T) {
	r := DaysOf(time.Monday, time.Friday)
	for d := time.Sunday; d <= time.Saturday; d++ {
		want := d == time.Monday || d == time.Friday
		if got := r.Contains(d); got != want {
			t.Errorf("Contains(%s) = %v, want %v", d, got, want)
		}
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		if !AllDays.Contains(d) {
			t.Errorf("AllDays should contain %s", d)
		}
	}
}

func TestParseDayRange(t *testing.T) {
	tests := []struct {
		input string
		want  DayRange
		valid bool
	}{
		{"", AllDays, true},
		{"all", AllDays, true},
		{"weekdays", DaysOf(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday), true},
		{"weekends", DaysOf(time.Saturday, time.Sunday), true},
		{"mon,tue", DaysOf(time.Monday, time.Tuesday), true},
		{"Monday, Sunday", DaysOf(time.Monday, time.Sunday), true},
		{"mon,funday", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseDayRange(tt.input)
		if tt.valid {
			if err != nil {
				t.Errorf("ParseDayRange(%q): unexpected error %v", tt.input, err)
			} else if got != tt.want {
				t.Errorf("ParseDayRange(%q) = %v, want %v", tt.input, got, tt.want)
			}
		} else if err == nil {
			t.Errorf("ParseDayRange(%q): expected error", tt.input)
		}
	}
}

func TestDayRangeString(t *testing.T) {
	if got := AllDays.String(); got != "All days" {
		t.Errorf("AllDays.String() = %q", got)
	}
	if got := DaysOf(time.Sunday, time.Monday).String(); got != "Mon,Sun" {
		t.Errorf("String() = %q, want %q", got, "Mon,Sun")
	}
}
