package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the zone whose calendar days the widget shows.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the occurrences (inclusive).
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means the default.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds calendar events ready for the widget.
type ExpandResult struct {
	Events []model.Event
	// TruncatedUIDs lists UIDs that hit MaxOccurrencesPerEvent.
	TruncatedUIDs []string
}

// MonthWindow returns a range covering `back` months before and `ahead`
// months after the month containing now.
func MonthWindow(now time.Time, back, ahead int) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -back, 0), first.AddDate(0, ahead+1, 0).Add(-time.Nanosecond)
}

// Expand turns parsed VEVENTs into concrete calendar events within the
// configured range, applying RRULE, EXDATE and RECURRENCE-ID overrides.
// The result is sorted by start time.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("ics: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	base := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	uids := make([]string, 0)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := base[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	out := make([]model.Event, 0)
	for _, uid := range uids {
		truncated := false
		for _, ev := range base[uid] {
			evs, hitCap := expandOne(ev, overrides[uid], cfg)
			truncated = truncated || hitCap
			out = append(out, evs...)
		}
		if truncated {
			result.TruncatedUIDs = append(result.TruncatedUIDs, uid)
			appLog.Warn("ics: occurrences truncated", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	result.Events = out
	return result, nil
}

func expandOne(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			return nil, false
		}
		if o, ok := findOverride(overrides, ev.Start); ok {
			return []model.Event{toEvent(o, o.Start, o.End, cfg.DisplayLocation)}, false
		}
		return []model.Event{toEvent(ev, ev.Start, ev.End, cfg.DisplayLocation)}, false
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the event duration so occurrences that start
	// before the range but still overlap it are kept.
	dur := ev.End.Sub(ev.Start)
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		e := s.Add(dur)
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			e = s.AddDate(0, 0, int(dur.Hours()/24+0.5))
		}
		if o, ok := findOverride(overrides, s); ok {
			out = append(out, toEvent(o, o.Start, o.End, cfg.DisplayLocation))
			continue
		}
		out = append(out, toEvent(ev, s, e, cfg.DisplayLocation))
	}
	return out, hitCap
}

func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// toEvent converts one occurrence into a widget event. ICS end times are
// exclusive while the widget's day range is inclusive, so an end falling
// exactly on midnight is pulled back into the previous day.
func toEvent(ev ParsedEvent, start, end time.Time, loc *time.Location) model.Event {
	var s, e time.Time
	if ev.AllDay {
		// All-day dates are floating: keep the calendar date, not the instant.
		s = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		e = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	} else {
		s = start.In(loc)
		e = end.In(loc)
	}
	if e.After(s) && e.Hour() == 0 && e.Minute() == 0 && e.Second() == 0 && e.Nanosecond() == 0 {
		e = e.AddDate(0, 0, -1)
		if e.Before(s) {
			e = s
		}
	}
	if e.Before(s) {
		e = s
	}

	return model.Event{
		ID:     ev.UID + "@" + start.UTC().Format("20060102T150405Z"),
		Title:  ev.Summary,
		AllDay: ev.AllDay,
		Start:  s,
		End:    e,
		Payload: map[string]any{
			"source_id":   ev.Source.ID,
			"uid":         ev.UID,
			"location":    ev.Location,
			"description": ev.Description,
		},
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
