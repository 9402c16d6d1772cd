package ics

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Loader runs the fetch -> parse -> expand pipeline for a set of sources.
type Loader struct {
	Fetcher  *Fetcher
	Sources  []Source
	Location *time.Location

	// MonthsBack / MonthsAhead size the expansion window around now.
	MonthsBack  int
	MonthsAhead int

	Now func() time.Time
}

// Load returns the events of all sources expanded around the current
// month. Sources that fail are skipped; the error aggregates their
// failures and is nil when every source succeeded.
func (l *Loader) Load(ctx context.Context) ([]model.Event, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	back, ahead := l.MonthsBack, l.MonthsAhead
	if back <= 0 {
		back = 12
	}
	if ahead <= 0 {
		ahead = 12
	}

	results, errs := l.Fetcher.FetchAll(ctx, l.Sources)

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		evs, err := ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("ics: parse %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, evs...)
	}

	start, end := MonthWindow(now().In(loc), back, ahead)
	expanded, err := Expand(parsed, ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      start,
		RangeEnd:        end,
	})
	if err != nil {
		return nil, err
	}

	appLog.Info("ics load completed",
		"sources", len(l.Sources),
		"events", len(expanded.Events),
		"truncated", len(expanded.TruncatedUIDs),
		"errors", len(errs),
	)
	return expanded.Events, errors.Join(errs...)
}
