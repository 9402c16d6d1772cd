// Package tui hosts a Calendar in the terminal. Key presses are turned into
// calendar intents; the view is the lipgloss frame plus the events of the
// selected day.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"monthcal/internal/calendar"
	"monthcal/internal/model"
	"monthcal/internal/render"
)

var (
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// Model is the bubbletea model wrapping one Calendar.
type Model struct {
	cal *calendar.Calendar

	// clicked holds what the last DayClicked call delivered.
	clicked []model.Event
	// pending collects typed digits until enter.
	pending string
}

// New builds the Calendar from opts. A DayClicked already set in opts is
// still called after the model records the events.
func New(opts calendar.Options) *Model {
	m := &Model{}
	hostClicked := opts.DayClicked
	opts.DayClicked = func(events []model.Event) {
		m.clicked = events
		if hostClicked != nil {
			hostClicked(events)
		}
	}
	m.cal = calendar.New(opts)
	m.clicked = m.cal.EventsOn(m.cal.SelectedDay())
	return m
}

// Calendar exposes the wrapped calendar.
func (m *Model) Calendar() *calendar.Calendar { return m.cal }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		if len(m.pending) < 2 {
			m.pending += k
		}
		return m, nil
	}

	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.pending = ""
	case "enter":
		if day, err := strconv.Atoi(m.pending); err == nil {
			m.selectDay(day)
		}
		m.pending = ""
	case "backspace":
		if m.pending != "" {
			m.pending = m.pending[:len(m.pending)-1]
		}
	case "p", "pgup", "[":
		m.cal.OnPrev()
		m.syncClicked()
	case "n", "pgdown", "]":
		m.cal.OnNext()
		m.syncClicked()
	case "t":
		m.cal.ResetToToday()
		m.syncClicked()
	case "left", "h":
		m.selectDay(m.cal.SelectedDay() - 1)
	case "right", "l":
		m.selectDay(m.cal.SelectedDay() + 1)
	case "up", "k":
		m.selectDay(m.cal.SelectedDay() - 7)
	case "down", "j":
		m.selectDay(m.cal.SelectedDay() + 7)
	}
	return m, nil
}

// selectDay forwards a day click; days outside the month are ignored by
// the calendar and leave the listed events unchanged.
func (m *Model) selectDay(day int) {
	m.cal.OnDayClicked(day)
}

// syncClicked lists the events of the auto-selected day after a month
// change, which does not fire DayClicked.
func (m *Model) syncClicked() {
	m.clicked = m.cal.EventsOn(m.cal.SelectedDay())
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(render.Frame(m.cal.Model()))
	b.WriteString("\n\n")

	cur := m.cal.CurrentDate()
	b.WriteString(titleStyle.Render(fmt.Sprintf("%04d-%02d-%02d", cur.Year, int(cur.Month), m.cal.SelectedDay())))
	b.WriteString("\n")
	if len(m.clicked) == 0 {
		b.WriteString(helpStyle.Render("  no events"))
		b.WriteString("\n")
	}
	for _, ev := range m.clicked {
		b.WriteString("  • ")
		b.WriteString(eventLine(ev))
		b.WriteString("\n")
	}

	if m.pending != "" {
		b.WriteString(inputStyle.Render("day: " + m.pending))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←/→/↑/↓ day  p/n month  t today  0-9+enter jump  q quit"))
	return b.String()
}

func eventLine(ev model.Event) string {
	title := ev.Title
	if title == "" {
		title = ev.ID
	}
	if ev.AllDay {
		return title + " (all day)"
	}
	return ev.Start.Format("15:04") + " " + title
}

// Run starts an interactive program until the user quits or ctx ends.
// The program paints through View, so opts.Renderer is dropped.
func Run(ctx context.Context, opts calendar.Options) error {
	opts.Renderer = nil
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
