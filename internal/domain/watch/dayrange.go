package watch

import (
	"fmt"
	"strings"
	"time"
)

// DayRange is a set of weekdays stored as a bitmask indexed by time.Weekday.
type DayRange uint8

// AllDays contains every weekday.
const AllDays DayRange = 1<<7 - 1

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// DaysOf builds a DayRange from explicit weekdays.
func DaysOf(days ...time.Weekday) DayRange {
	var r DayRange
	for _, d := range days {
		r |= 1 << uint(d)
	}
	return r
}

// ParseDayRange accepts "all", "weekdays", "weekends" or a comma separated
// list of day names such as "mon,tue,fri".
func ParseDayRange(s string) (DayRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all", "daily":
		return AllDays, nil
	case "weekdays":
		return DaysOf(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday), nil
	case "weekends":
		return DaysOf(time.Saturday, time.Sunday), nil
	}

	var r DayRange
	for _, part := range strings.Split(s, ",") {
		d, ok := dayNames[strings.TrimSpace(part)]
		if !ok {
			return 0, fmt.Errorf("unknown day %q", part)
		}
		r |= DaysOf(d)
	}
	return r, nil
}

// Contains is a pure membership test.
func (r DayRange) Contains(day time.Weekday) bool {
	return r&(1<<uint(day)) != 0
}

func (r DayRange) IsAll() bool {
	return r&AllDays == AllDays
}

func (r DayRange) IsEmpty() bool {
	return r&AllDays == 0
}

// Days lists the members starting from Monday.
func (r DayRange) Days() []time.Weekday {
	var days []time.Weekday
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if r.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (r DayRange) String() string {
	if r.IsAll() {
		return "All days"
	}
	names := make([]string, 0, 7)
	for _, d := range r.Days() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}
