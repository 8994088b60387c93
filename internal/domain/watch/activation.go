package watch

import "time"

// IsActive reports whether w is active at now. The day is taken from now's
// location and both time bounds are exclusive, so a window whose Start is not
// before its End is never active; overnight windows are not supported.
func IsActive(w TimeWindow, now time.Time) bool {
	if w.State != StateEnabled {
		return false
	}
	if !w.Days.Contains(now.Weekday()) {
		return false
	}
	t := TimeOfDayOf(now)
	return w.Start < t && t < w.End
}

// Partition splits windows into those active at now and the rest.
func Partition(windows []TimeWindow, now time.Time) (active, inactive []TimeWindow) {
	for _, w := range windows {
		if IsActive(w, now) {
			active = append(active, w)
		} else {
			inactive = append(inactive, w)
		}
	}
	return active, inactive
}
