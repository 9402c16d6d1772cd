package eventindex

import (
	"testing"
	"time"

	"monthcal/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildMarksInclusiveRange(t *testing.T) {
	events := []model.Event{
		{ID: "a", Start: date(2024, time.March, 10), End: date(2024, time.March, 12)},
	}
	idx := Build(events, 2024, time.March)

	for _, d := range []int{10, 11, 12} {
		if !idx.DayMap[d] {
			t.Fatalf("expected day %d to be marked", d)
		}
	}
	for _, d := range []int{9, 13} {
		if idx.HasEvent(d) {
			t.Fatalf("did not expect day %d to be marked", d)
		}
	}
}

func TestBuildFiltersByStartMonthAndYear(t *testing.T) {
	events := []model.Event{
		{ID: "feb", Start: date(2024, time.February, 27), End: date(2024, time.March, 2)},
		{ID: "mar", Start: date(2024, time.March, 1), End: date(2024, time.March, 1)},
		{ID: "mar-last-year", Start: date(2023, time.March, 5), End: date(2023, time.March, 5)},
	}
	idx := Build(events, 2024, time.March)

	if len(idx.Events) != 1 || idx.Events[0].ID != "mar" {
		t.Fatalf("unexpected filtered events %+v", idx.Events)
	}
	if idx.HasEvent(2) || idx.HasEvent(5) {
		t.Fatalf("events starting outside March 2024 must not mark days: %v", idx.DayMap)
	}
}

// An event crossing into the next month is attributed to its start month and
// its range is computed from day-of-month numbers.
func TestBuildCrossMonthRangeUsesDayOfMonthArithmetic(t *testing.T) {
	shortTail := []model.Event{
		{ID: "x", Start: date(2024, time.March, 10), End: date(2024, time.April, 2)},
	}
	idx := Build(shortTail, 2024, time.March)
	if len(idx.Events) != 1 {
		t.Fatalf("expected event attributed to its start month")
	}
	if len(idx.DayMap) != 0 {
		t.Fatalf("expected end day 2 < start day 10 to mark nothing, got %v", idx.DayMap)
	}

	longTail := []model.Event{
		{ID: "y", Start: date(2024, time.March, 28), End: date(2024, time.April, 30)},
	}
	idx = Build(longTail, 2024, time.March)
	for _, d := range []int{28, 29, 30} {
		if !idx.DayMap[d] {
			t.Fatalf("expected day %d marked by day-of-month range", d)
		}
	}
	if idx.DayMap[31] {
		t.Fatalf("day 31 is past End.Day() and must not be marked")
	}

	april := Build(longTail, 2024, time.April)
	if len(april.Events) != 0 || len(april.DayMap) != 0 {
		t.Fatalf("event must not be attributed to its end month")
	}
}

func TestBuildSkipsMalformedEvents(t *testing.T) {
	events := []model.Event{
		{ID: "no-start", End: date(2024, time.March, 3)},
		{ID: "no-end", Start: date(2024, time.March, 3)},
		{ID: "ok", Start: date(2024, time.March, 4), End: date(2024, time.March, 4)},
	}
	idx := Build(events, 2024, time.March)
	if idx.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", idx.Skipped)
	}
	if len(idx.Events) != 1 || !idx.HasEvent(4) || idx.HasEvent(3) {
		t.Fatalf("unexpected index %+v", idx)
	}
}

func TestOnReturnsEventsCoveringDay(t *testing.T) {
	events := []model.Event{
		{ID: "a", Start: date(2024, time.March, 10), End: date(2024, time.March, 12)},
		{ID: "b", Start: date(2024, time.March, 10), End: date(2024, time.March, 10)},
		{ID: "c", Start: date(2024, time.March, 11), End: date(2024, time.March, 15)},
	}
	idx := Build(events, 2024, time.March)

	got := idx.On(10)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected events on day 10: %+v", got)
	}
	if len(idx.On(9)) != 0 {
		t.Fatalf("expected no events on day 9")
	}
	if len(idx.On(13)) != 1 {
		t.Fatalf("expected only c on day 13")
	}
}

func TestOnReturnsCopies(t *testing.T) {
	events := []model.Event{
		{ID: "a", Start: date(2024, time.March, 10), End: date(2024, time.March, 10), Payload: map[string]any{"k": "v"}},
	}
	idx := Build(events, 2024, time.March)
	got := idx.On(10)
	got[0].Payload["k"] = "changed"
	if idx.Events[0].Payload["k"] != "v" {
		t.Fatalf("On leaked a reference to indexed payload")
	}
	if events[0].Payload["k"] != "v" {
		t.Fatalf("Build leaked a reference to the input payload")
	}
}
