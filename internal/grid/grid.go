// Package grid computes the fixed 6x7 month layout shown by the calendar.
package grid

import "time"

// Cells is the number of cells in every rendered month: six weeks of seven
// days. It fits every Gregorian month (31 days + 6 leading fillers = 37).
const Cells = 42

// Day is a single day of the displayed month.
type Day struct {
	Number   int  `json:"day"`
	Selected bool `json:"selected"`
}

// MonthGrid describes one displayed month.
type MonthGrid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	StartWeekday    time.Weekday `json:"start_weekday"`
	FirstWeekday    time.Weekday `json:"first_weekday"`
	DaysInMonth     int          `json:"days_in_month"`
	DaysInPrevMonth int          `json:"days_in_prev_month"`

	// Leading and Trailing are the filler cell counts around Days.
	Leading  int `json:"leading"`
	Trailing int `json:"trailing"`

	Days []Day `json:"days"`
}

// DaysInMonth returns the number of days in month, using "day 0 of the next
// month" which time.Date normalises to the last day of month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of day 1 of month.
func FirstWeekday(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// DayOffset is the number of previous-month cells before day 1 when weeks
// start on start. Always in [0, 6].
func DayOffset(first, start time.Weekday) int {
	return ((int(first)-int(start))%7 + 7) % 7
}

// WeekdayOrder returns the seven weekdays in header order beginning at start.
func WeekdayOrder(start time.Weekday) [7]time.Weekday {
	var out [7]time.Weekday
	s := normalizeWeekday(start)
	for i := range out {
		out[i] = time.Weekday((int(s) + i) % 7)
	}
	return out
}

// Compute builds the grid for (year, month). Month values outside 1..12 are
// normalised the same way time.Date does, so callers may pass month±1.
func Compute(year int, month time.Month, start time.Weekday) MonthGrid {
	norm := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	year, month = norm.Year(), norm.Month()
	start = normalizeWeekday(start)

	g := MonthGrid{
		Year:            year,
		Month:           month,
		StartWeekday:    start,
		FirstWeekday:    norm.Weekday(),
		DaysInMonth:     DaysInMonth(year, month),
		DaysInPrevMonth: DaysInMonth(year, month-1),
	}
	g.Leading = DayOffset(g.FirstWeekday, start)
	g.Trailing = Cells - g.Leading - g.DaysInMonth

	g.Days = make([]Day, g.DaysInMonth)
	for i := range g.Days {
		g.Days[i] = Day{Number: i + 1}
	}
	return g
}

// LeadingLabels returns the previous-month day numbers shown before day 1.
func (g MonthGrid) LeadingLabels() []int {
	out := make([]int, g.Leading)
	for i := range out {
		out[i] = g.DaysInPrevMonth + 1 - g.Leading + i
	}
	return out
}

// TrailingLabels returns the next-month day numbers shown after the last day.
func (g MonthGrid) TrailingLabels() []int {
	out := make([]int, g.Trailing)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Contains reports whether day is a real day of the displayed month.
func (g MonthGrid) Contains(day int) bool {
	return day >= 1 && day <= g.DaysInMonth
}

// Clone copies the grid including its Days slice.
func (g MonthGrid) Clone() MonthGrid {
	out := g
	out.Days = append([]Day(nil), g.Days...)
	return out
}

func normalizeWeekday(w time.Weekday) time.Weekday {
	return time.Weekday((int(w)%7 + 7) % 7)
}
