package calendar

import (
	"time"

	"monthcal/internal/eventindex"
	"monthcal/internal/grid"
	"monthcal/internal/locale"
	"monthcal/internal/model"
)

// Style holds presentation toggles. The core only forwards them to the
// Renderer.
type Style struct {
	Theme       string `json:"theme"`
	Color       string `json:"color,omitempty"`
	FontFamily1 string `json:"font_family_1,omitempty"`
	FontFamily2 string `json:"font_family_2,omitempty"`
	DropShadow  bool   `json:"drop_shadow"`
	Border      bool   `json:"border"`
}

// DefaultStyle is the "default" theme with shadow and border enabled.
func DefaultStyle() Style {
	return Style{
		Theme:      "default",
		DropShadow: true,
		Border:     true,
	}
}

// Options configures a Calendar. Use DefaultOptions as a starting point;
// the zero value turns shadow and border off.
type Options struct {
	// StartWeekday is the first column of the grid (Sunday by default).
	StartWeekday time.Weekday

	WeekdayStyle locale.WeekdayStyle
	MonthStyle   locale.MonthStyle
	Locale       string

	Style Style

	// Events is copied on construction; the caller keeps ownership.
	Events []model.Event

	// DayClicked is invoked once per successful day selection with the
	// events covering that day.
	DayClicked func(events []model.Event)

	Renderer Renderer

	// Now supplies the wall clock; today is read once in New.
	Now func() time.Time
}

// DefaultOptions mirrors the widget defaults: Sunday start, short weekday
// labels, long month names, English, default theme.
func DefaultOptions() Options {
	return Options{
		StartWeekday: time.Sunday,
		WeekdayStyle: locale.WeekdayShort,
		MonthStyle:   locale.MonthLong,
		Locale:       "en",
		Style:        DefaultStyle(),
		Now:          time.Now,
	}
}

// RenderModel is everything a Renderer needs for one paint. All fields are
// copies; mutating them has no effect on the Calendar.
type RenderModel struct {
	Grid     grid.MonthGrid    `json:"grid"`
	DayMap   eventindex.DayMap `json:"day_map"`
	Header   string            `json:"header"`
	Weekdays []string          `json:"weekdays"`

	Selected     int                `json:"selected"`
	Today        model.CalendarDate `json:"today"`
	TodayVisible bool               `json:"today_visible"`

	Style Style `json:"style"`
}

// IsToday reports whether day of the displayed month is today.
func (m RenderModel) IsToday(day int) bool {
	return m.TodayVisible && m.Today.Day == day
}

// Renderer paints a RenderModel. It must not hold on to the model between
// calls; every call carries the complete state.
type Renderer interface {
	Render(m RenderModel) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(m RenderModel) error

func (f RendererFunc) Render(m RenderModel) error {
	return f(m)
}

// Intents are the raw UI actions a Renderer forwards back to the core.
type Intents interface {
	OnPrev()
	OnNext()
	OnDayClicked(day int)
}
