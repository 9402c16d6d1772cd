// Package selection keeps exactly one day of the displayed month selected.
package selection

import (
	"time"

	"monthcal/internal/grid"
	"monthcal/internal/model"
)

// State tracks the selected day number (1-based) of the current month.
// The zero value has nothing selected until SelectInitial runs.
type State struct {
	selected int
}

// Selected returns the selected day number, or 0 before initialisation.
func (s *State) Selected() int {
	return s.selected
}

// SelectInitial anchors the selection for a freshly computed month: today's
// day when (year, month) is today's month, otherwise day 1. Any flags left
// on days are cleared first.
func (s *State) SelectInitial(days []grid.Day, today model.CalendarDate, year int, month time.Month) int {
	for i := range days {
		days[i].Selected = false
	}
	s.selected = 0
	if len(days) == 0 {
		return 0
	}

	day := 1
	if today.SameMonth(year, month) && today.Day >= 1 && today.Day <= len(days) {
		day = today.Day
	}
	days[day-1].Selected = true
	s.selected = day
	return day
}

// Select moves the selection to day. It returns false and leaves days
// untouched when day is outside 1..len(days).
func (s *State) Select(days []grid.Day, day int) bool {
	if day < 1 || day > len(days) {
		return false
	}
	if s.selected >= 1 && s.selected <= len(days) {
		days[s.selected-1].Selected = false
	}
	days[day-1].Selected = true
	s.selected = day
	return true
}

// Count returns how many days carry the selected flag.
func Count(days []grid.Day) int {
	n := 0
	for _, d := range days {
		if d.Selected {
			n++
		}
	}
	return n
}
