// Package eventindex maps a flat event list onto the days of one month.
//
// Membership and day ranges use day-of-month numbers, not absolute dates:
// an event belongs to the month its Start falls in, and it marks every day
// number from Start.Day() to End.Day() inclusive. An event that ends in a
// later month therefore marks a tail computed from the end's day number,
// which can be shorter, longer or empty compared with the real overlap.
package eventindex

import (
	"time"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// DayMap records which day numbers of the displayed month have an event.
// Absent keys mean no event.
type DayMap map[int]bool

// Clone copies the map.
func (m DayMap) Clone() DayMap {
	out := make(DayMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Index holds the events of one month and the derived DayMap.
type Index struct {
	Year  int
	Month time.Month

	// Events are the events whose start falls in (Year, Month).
	Events []model.Event
	DayMap DayMap

	// Skipped counts malformed events that were dropped while building.
	Skipped int
}

// Build filters events to those starting in (year, month) and marks the day
// range of each one. Malformed events are skipped.
func Build(events []model.Event, year int, month time.Month) Index {
	idx := Index{
		Year:   year,
		Month:  month,
		Events: make([]model.Event, 0),
		DayMap: make(DayMap),
	}

	for _, ev := range events {
		if err := model.Validate(ev); err != nil {
			idx.Skipped++
			appLog.Debug("eventindex: skipping event", "err", err)
			continue
		}
		if !model.DateOf(ev.Start).SameMonth(year, month) {
			continue
		}
		idx.Events = append(idx.Events, ev.Clone())

		for d := ev.Start.Day(); d <= ev.End.Day(); d++ {
			idx.DayMap[d] = true
		}
	}

	return idx
}

// HasEvent reports whether any event covers day.
func (idx Index) HasEvent(day int) bool {
	return idx.DayMap[day]
}

// On returns copies of the events whose day range covers day, in input order.
func (idx Index) On(day int) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range idx.Events {
		if ev.Start.Day() <= day && day <= ev.End.Day() {
			out = append(out, ev.Clone())
		}
	}
	return out
}
