// Package calendar is the month-view navigation controller. A Calendar owns
// its displayed month, the selected day and the events collection, and runs
// the recompute chain grid -> selection -> event index -> render on every
// month change.
//
// A Calendar is not safe for concurrent use. Hosts that receive intents from
// several goroutines must serialise calls.
package calendar

import (
	"time"

	"monthcal/internal/eventindex"
	"monthcal/internal/grid"
	"monthcal/internal/locale"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
	"monthcal/internal/selection"
)

var _ Intents = (*Calendar)(nil)

// Calendar is one widget instance.
type Calendar struct {
	opts     Options
	format   locale.Formatter
	weekdays []string

	today   model.CalendarDate
	current model.CalendarDate

	grid   grid.MonthGrid
	sel    selection.State
	events []model.Event
	index  eventindex.Index
}

// New builds a Calendar showing today's month with today selected and
// renders it once.
func New(opts Options) *Calendar {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Style.Theme == "" {
		opts.Style.Theme = "default"
	}
	opts.StartWeekday = time.Weekday((int(opts.StartWeekday)%7 + 7) % 7)
	opts.WeekdayStyle = locale.ParseWeekdayStyle(string(opts.WeekdayStyle))
	opts.MonthStyle = locale.ParseMonthStyle(string(opts.MonthStyle))

	c := &Calendar{
		opts:   opts,
		format: locale.New(opts.Locale),
		events: model.CloneEvents(opts.Events),
	}
	c.opts.Events = nil
	c.weekdays = c.format.Weekdays(grid.WeekdayOrder(opts.StartWeekday), opts.WeekdayStyle)

	c.today = model.DateOf(opts.Now())
	c.current = model.CalendarDate{Year: c.today.Year, Month: c.today.Month, Day: 1}

	c.recompute()
	c.render()
	return c
}

// GoToMonth moves one month back (offset < 0) or forward (offset > 0) and
// runs the full recompute chain. Zero only re-renders.
func (c *Calendar) GoToMonth(offset int) {
	if offset == 0 {
		c.render()
		return
	}
	step := 1
	if offset < 0 {
		step = -1
	}

	next := time.Date(c.current.Year, c.current.Month+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
	c.current = model.DateOf(next)

	appLog.Debug("calendar: month changed", "year", c.current.Year, "month", c.current.Month)
	c.recompute()
	c.render()
}

// Prev shows the previous month.
func (c *Calendar) Prev() { c.GoToMonth(-1) }

// Next shows the following month.
func (c *Calendar) Next() { c.GoToMonth(1) }

// ResetToToday jumps back to today's month.
func (c *Calendar) ResetToToday() {
	c.current = model.CalendarDate{Year: c.today.Year, Month: c.today.Month, Day: 1}
	c.recompute()
	c.render()
}

// SelectDay selects day of the displayed month and reports the events on
// that day to DayClicked. Days outside the month are ignored and false is
// returned; no callback fires in that case.
func (c *Calendar) SelectDay(day int) bool {
	if !c.grid.Contains(day) {
		appLog.Debug("calendar: ignoring out-of-range day", "day", day, "days_in_month", c.grid.DaysInMonth)
		return false
	}

	c.current.Day = day
	c.sel.Select(c.grid.Days, day)
	onDay := c.index.On(day)

	c.render()
	if c.opts.DayClicked != nil {
		c.opts.DayClicked(onDay)
	}
	return true
}

// ReplaceEvents stores a copy of events in place of the current collection
// and returns a copy of what was stored. The displayed month and selection
// are kept.
func (c *Calendar) ReplaceEvents(events []model.Event) []model.Event {
	c.events = model.CloneEvents(events)
	c.reindex()
	c.render()
	return model.CloneEvents(c.events)
}

// AppendEvents adds copies of events and returns the new total.
func (c *Calendar) AppendEvents(events []model.Event) int {
	c.events = append(c.events, model.CloneEvents(events)...)
	c.reindex()
	c.render()
	return len(c.events)
}

// EventsData returns a deep copy of the stored events.
func (c *Calendar) EventsData() []model.Event {
	return model.CloneEvents(c.events)
}

// GetEventsData is an alias of EventsData.
func (c *Calendar) GetEventsData() []model.Event { return c.EventsData() }

// SetEventsData is an alias of ReplaceEvents.
func (c *Calendar) SetEventsData(events []model.Event) []model.Event {
	return c.ReplaceEvents(events)
}

// AppendEventsData is an alias of AppendEvents.
func (c *Calendar) AppendEventsData(events []model.Event) int {
	return c.AppendEvents(events)
}

// OnPrev implements Intents.
func (c *Calendar) OnPrev() { c.Prev() }

// OnNext implements Intents.
func (c *Calendar) OnNext() { c.Next() }

// OnDayClicked implements Intents.
func (c *Calendar) OnDayClicked(day int) { c.SelectDay(day) }

// Today returns the date captured at construction.
func (c *Calendar) Today() model.CalendarDate { return c.today }

// CurrentDate returns the displayed month; Day is 1 after navigation and the
// selected day after SelectDay.
func (c *Calendar) CurrentDate() model.CalendarDate { return c.current }

// SelectedDay returns the selected day number of the displayed month.
func (c *Calendar) SelectedDay() int { return c.sel.Selected() }

// Grid returns a copy of the displayed month grid.
func (c *Calendar) Grid() grid.MonthGrid { return c.grid.Clone() }

// DayMap returns a copy of the event presence map of the displayed month.
func (c *Calendar) DayMap() eventindex.DayMap { return c.index.DayMap.Clone() }

// EventsOn returns the events covering day of the displayed month.
func (c *Calendar) EventsOn(day int) []model.Event {
	if !c.grid.Contains(day) {
		return []model.Event{}
	}
	return c.index.On(day)
}

// Model builds the render model for the current state.
func (c *Calendar) Model() RenderModel {
	return RenderModel{
		Grid:         c.grid.Clone(),
		DayMap:       c.index.DayMap.Clone(),
		Header:       c.format.Header(c.current.Year, c.current.Month, c.opts.MonthStyle),
		Weekdays:     append([]string(nil), c.weekdays...),
		Selected:     c.sel.Selected(),
		Today:        c.today,
		TodayVisible: c.today.SameMonth(c.current.Year, c.current.Month),
		Style:        c.opts.Style,
	}
}

func (c *Calendar) recompute() {
	c.grid = grid.Compute(c.current.Year, c.current.Month, c.opts.StartWeekday)
	c.sel = selection.State{}
	c.sel.SelectInitial(c.grid.Days, c.today, c.current.Year, c.current.Month)
	c.reindex()
}

func (c *Calendar) reindex() {
	c.index = eventindex.Build(c.events, c.current.Year, c.current.Month)
	if c.index.Skipped > 0 {
		appLog.Debug("calendar: malformed events skipped", "count", c.index.Skipped)
	}
}

func (c *Calendar) render() {
	if c.opts.Renderer == nil {
		return
	}
	if err := c.opts.Renderer.Render(c.Model()); err != nil {
		appLog.Error("calendar: render failed", err, "year", c.current.Year, "month", c.current.Month)
	}
}
