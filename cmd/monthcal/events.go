package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// loadEventsFile reads a JSON array of events. An empty path or a missing
// file yields no events. Malformed entries are kept and logged; the
// calendar skips them when indexing.
func loadEventsFile(path string) ([]model.Event, error) {
	if path == "" {
		return []model.Event{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("events file not found; starting empty", "path", path)
			return []model.Event{}, nil
		}
		return nil, err
	}

	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("events file %s: %w", path, err)
	}

	malformed := 0
	for _, ev := range events {
		var me *model.MalformedEventError
		if err := model.Validate(ev); errors.As(err, &me) {
			malformed++
			appLog.Warn("malformed event in file", "id", me.ID, "reason", me.Reason)
		}
	}
	appLog.Info("events file loaded", "path", path, "events", len(events), "malformed", malformed)

	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}
