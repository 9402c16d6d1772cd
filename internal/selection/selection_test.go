package selection

import (
	"testing"
	"time"

	"monthcal/internal/grid"
	"monthcal/internal/model"
)

var today = model.CalendarDate{Year: 2024, Month: time.March, Day: 15}

func TestSelectInitialPicksTodayInTodaysMonth(t *testing.T) {
	g := grid.Compute(2024, time.March, time.Sunday)
	var s State
	if got := s.SelectInitial(g.Days, today, 2024, time.March); got != 15 {
		t.Fatalf("expected day 15, got %d", got)
	}
	if !g.Days[14].Selected || Count(g.Days) != 1 {
		t.Fatalf("expected only day 15 flagged")
	}
}

func TestSelectInitialPicksFirstDayElsewhere(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
	}{
		{2024, time.April},
		{2023, time.March},
		{2025, time.March},
	}
	for _, tc := range cases {
		g := grid.Compute(tc.year, tc.month, time.Sunday)
		var s State
		if got := s.SelectInitial(g.Days, today, tc.year, tc.month); got != 1 {
			t.Fatalf("%d-%s: expected day 1, got %d", tc.year, tc.month, got)
		}
		if !g.Days[0].Selected || Count(g.Days) != 1 {
			t.Fatalf("%d-%s: expected only day 1 flagged", tc.year, tc.month)
		}
	}
}

func TestSelectInitialClearsStaleFlags(t *testing.T) {
	g := grid.Compute(2024, time.April, time.Sunday)
	g.Days[3].Selected = true
	g.Days[9].Selected = true
	var s State
	s.SelectInitial(g.Days, today, 2024, time.April)
	if Count(g.Days) != 1 || !g.Days[0].Selected {
		t.Fatalf("expected a single selection on day 1")
	}
}

func TestSelectMovesFlagAtomically(t *testing.T) {
	g := grid.Compute(2024, time.March, time.Sunday)
	var s State
	s.SelectInitial(g.Days, today, 2024, time.March)

	for _, day := range []int{1, 31, 10, 10, 2} {
		if !s.Select(g.Days, day) {
			t.Fatalf("select %d failed", day)
		}
		if s.Selected() != day || !g.Days[day-1].Selected || Count(g.Days) != 1 {
			t.Fatalf("after select %d: selected=%d count=%d", day, s.Selected(), Count(g.Days))
		}
	}
}

func TestSelectOutOfRangeIsNoop(t *testing.T) {
	g := grid.Compute(2024, time.February, time.Sunday)
	var s State
	s.SelectInitial(g.Days, today, 2024, time.February)

	before := g.Clone()
	for _, day := range []int{0, -1, 30, 31, 100} {
		if s.Select(g.Days, day) {
			t.Fatalf("select %d should fail for a 29-day month", day)
		}
	}
	if s.Selected() != 1 {
		t.Fatalf("selection moved to %d", s.Selected())
	}
	for i := range g.Days {
		if g.Days[i] != before.Days[i] {
			t.Fatalf("day %d changed on a rejected select", i+1)
		}
	}
}
