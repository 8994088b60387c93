package telegram

import (
	"fmt"
	"strings"

	"railwatch/internal/domain/watch"
)

const watchUsage = "<FROM> <TO> <HH:MM> <HH:MM> [days] [chat ID]"

// parseWatchArgs reads "FROM TO START END [DAYS] [TARGET]". Days default to
// every day and the target defaults to the chat the command came from.
func parseWatchArgs(args []string, defaultTarget string) (watch.TimeWindow, error) {
	if len(args) < 4 || len(args) > 6 {
		return watch.TimeWindow{}, fmt.Errorf("expected %s", watchUsage)
	}

	start, err := watch.ParseTimeOfDay(args[2])
	if err != nil {
		return watch.TimeWindow{}, err
	}
	end, err := watch.ParseTimeOfDay(args[3])
	if err != nil {
		return watch.TimeWindow{}, err
	}

	days := watch.AllDays
	if len(args) >= 5 {
		if days, err = watch.ParseDayRange(args[4]); err != nil {
			return watch.TimeWindow{}, err
		}
	}

	target := defaultTarget
	if len(args) == 6 {
		if _, err := ParseTarget(args[5]); err != nil {
			return watch.TimeWindow{}, err
		}
		target = args[5]
	}

	w := watch.TimeWindow{
		Start:  start,
		End:    end,
		Days:   days,
		From:   watch.Station(strings.ToUpper(args[0])),
		To:     watch.Station(strings.ToUpper(args[1])),
		Target: target,
	}
	return w, w.Validate()
}

func describeWatch(i int, w watch.TimeWindow) string {
	line := fmt.Sprintf("%d. %s (chat %s)", i+1, w, w.Target)
	if w.State == watch.StateDisabled {
		line += " [paused]"
	}
	if w.Start >= w.End {
		line += " [never active: start is not before end]"
	}
	return line
}
