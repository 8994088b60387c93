package config

import (
	"fmt"
	"os"
	"strings"

	"railwatch/internal/domain/watch"

	"gopkg.in/yaml.v3"
)

// watchFile is the layout of WATCHES_FILE.
type watchFile struct {
	Watches []watchEntry `yaml:"watches"`
}

type watchEntry struct {
	From   string   `yaml:"from"`
	To     string   `yaml:"to"`
	Start  string   `yaml:"start"`
	End    string   `yaml:"end"`
	Days   []string `yaml:"days"`
	Target string   `yaml:"target"`
	Paused bool     `yaml:"paused"`
}

// LoadWatches reads seed watch windows from a YAML file.
func LoadWatches(path string) ([]watch.TimeWindow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading watches file: %w", err)
	}

	var f watchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing watches file: %w", err)
	}

	windows := make([]watch.TimeWindow, 0, len(f.Watches))
	for i, e := range f.Watches {
		w, err := e.toWindow()
		if err != nil {
			return nil, fmt.Errorf("watch #%d: %w", i+1, err)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (e watchEntry) toWindow() (watch.TimeWindow, error) {
	start, err := watch.ParseTimeOfDay(e.Start)
	if err != nil {
		return watch.TimeWindow{}, err
	}
	end, err := watch.ParseTimeOfDay(e.End)
	if err != nil {
		return watch.TimeWindow{}, err
	}
	days, err := watch.ParseDayRange(strings.Join(e.Days, ","))
	if err != nil {
		return watch.TimeWindow{}, err
	}

	w := watch.TimeWindow{
		Start:  start,
		End:    end,
		Days:   days,
		From:   watch.Station(strings.ToUpper(strings.TrimSpace(e.From))),
		To:     watch.Station(strings.ToUpper(strings.TrimSpace(e.To))),
		Target: strings.TrimSpace(e.Target),
	}
	if e.Paused {
		w.State = watch.StateDisabled
	}
	return w, w.Validate()
}
