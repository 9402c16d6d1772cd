// Package render contains Renderer implementations for the calendar core:
// a lipgloss terminal grid, the HTML widget markup and a JSON dump of the
// render model.
package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"monthcal/internal/calendar"
	"monthcal/internal/grid"
)

const cellWidth = 4

// palette is the set of colours used by one theme.
type palette struct {
	primary lipgloss.Color
	muted   lipgloss.Color
	event   lipgloss.Color
	text    lipgloss.Color
}

var themes = map[string]palette{
	"default": {
		primary: lipgloss.Color("205"),
		muted:   lipgloss.Color("241"),
		event:   lipgloss.Color("120"),
		text:    lipgloss.Color("252"),
	},
	"dark": {
		primary: lipgloss.Color("117"),
		muted:   lipgloss.Color("238"),
		event:   lipgloss.Color("229"),
		text:    lipgloss.Color("255"),
	},
}

func paletteFor(s calendar.Style) palette {
	p, ok := themes[s.Theme]
	if !ok {
		p = themes["default"]
	}
	if s.Color != "" {
		p.primary = lipgloss.Color(s.Color)
	}
	return p
}

// Terminal writes a boxed month grid to W on every render.
type Terminal struct {
	W io.Writer
}

func (t Terminal) Render(m calendar.RenderModel) error {
	_, err := io.WriteString(t.W, Frame(m)+"\n")
	return err
}

// Frame draws the month as a string: header, weekday row and six weeks.
// Selected days are reversed, today is underlined and days with events
// carry a dot.
func Frame(m calendar.RenderModel) string {
	p := paletteFor(m.Style)

	base := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	filler := base.Foreground(p.muted)
	normal := base.Foreground(p.text)
	event := base.Foreground(p.event)
	weekday := base.Bold(true).Foreground(p.muted)

	headerWidth := cellWidth * 7
	header := lipgloss.NewStyle().
		Width(headerWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(p.primary).
		Render("‹ " + m.Header + " ›")

	labels := make([]string, 0, len(m.Weekdays))
	for _, w := range m.Weekdays {
		labels = append(labels, weekday.Render(w))
	}

	cells := make([]string, 0, grid.Cells)
	for _, n := range m.Grid.LeadingLabels() {
		cells = append(cells, filler.Render(strconv.Itoa(n)))
	}
	for _, d := range m.Grid.Days {
		label := strconv.Itoa(d.Number)
		style := normal
		if m.DayMap[d.Number] {
			label += "•"
			style = event
		}
		if m.IsToday(d.Number) {
			style = style.Underline(true)
		}
		if d.Selected {
			style = style.Bold(true).Reverse(true).Foreground(p.primary)
		}
		cells = append(cells, style.Render(label))
	}
	for _, n := range m.Grid.TrailingLabels() {
		cells = append(cells, filler.Render(strconv.Itoa(n)))
	}

	rows := []string{header, lipgloss.JoinHorizontal(lipgloss.Top, labels...)}
	for i := 0; i+7 <= len(cells); i += 7 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:i+7]...))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)

	box := lipgloss.NewStyle().Padding(0, 1)
	if m.Style.Border {
		box = box.Border(lipgloss.RoundedBorder()).BorderForeground(p.primary)
	}
	return box.Render(body)
}

// PlainFrame is Frame without ANSI styling, used for logs and golden output.
func PlainFrame(m calendar.RenderModel) string {
	var b strings.Builder
	b.WriteString(m.Header)
	b.WriteString("\n")
	for _, w := range m.Weekdays {
		b.WriteString(pad(w))
	}
	b.WriteString("\n")

	col := 0
	write := func(s string) {
		b.WriteString(pad(s))
		col++
		if col%7 == 0 {
			b.WriteString("\n")
		}
	}
	for _, n := range m.Grid.LeadingLabels() {
		write("(" + strconv.Itoa(n) + ")")
	}
	for _, d := range m.Grid.Days {
		s := strconv.Itoa(d.Number)
		if m.DayMap[d.Number] {
			s += "*"
		}
		if d.Selected {
			s = "[" + s + "]"
		}
		write(s)
	}
	for _, n := range m.Grid.TrailingLabels() {
		write("(" + strconv.Itoa(n) + ")")
	}
	return strings.TrimRight(b.String(), "\n")
}

func pad(s string) string {
	const w = 6
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}
