package render

import (
	"html/template"
	"io"
	"strconv"
	"strings"

	"monthcal/internal/calendar"
)

// HTML renders the widget markup. With Document set it wraps the widget in
// a full page carrying the base stylesheet; the root element exposes
// data-ready="true" so headless captures know when painting is done.
type HTML struct {
	W io.Writer

	// Document emits <html>/<head>/<body> around the widget.
	Document bool

	// ActionBase, when set, turns arrows and days into links of the form
	// <base>/nav?offset=-1 and <base>/select?day=N.
	ActionBase string
}

func (h HTML) Render(m calendar.RenderModel) error {
	return WriteHTML(h.W, m, h.Document, h.ActionBase)
}

type htmlCell struct {
	Label   int
	Classes string
	Today   bool
	Href    string
}

type htmlView struct {
	Theme    string
	Vars     template.CSS
	Header   string
	Weekdays []string
	Leading  []int
	Days     []htmlCell
	Trailing []int
	PrevHref string
	NextHref string
	Document bool
}

var widgetTmpl = template.Must(template.New("page").Parse(`{{define "widget"}}<div class="calendar {{.Theme}}"{{if .Vars}} style="{{.Vars}}"{{end}} data-ready="true">
  <div class="calendar__header">
    <div class="calendar__arrow calendar__arrow-prev">{{if .PrevHref}}<a class="calendar__arrow-inner" href="{{.PrevHref}}" rel="nofollow"></a>{{else}}<div class="calendar__arrow-inner"></div>{{end}}</div>
    <div class="calendar__month">{{.Header}}</div>
    <div class="calendar__arrow calendar__arrow-next">{{if .NextHref}}<a class="calendar__arrow-inner" href="{{.NextHref}}" rel="nofollow"></a>{{else}}<div class="calendar__arrow-inner"></div>{{end}}</div>
  </div>
  <div class="calendar__body">
    <div class="calendar__weekdays">{{range .Weekdays}}<div class="calendar__weekday">{{.}}</div>{{end}}</div>
    <div class="calendar__days">
{{- range .Leading}}
      <div class="calendar__day calendar__day-other">{{.}}</div>
{{- end}}
{{- range .Days}}
      <div class="{{.Classes}}">
        {{if .Href}}<a class="calendar__day-text" href="{{.Href}}" rel="nofollow">{{.Label}}</a>{{else}}<span class="calendar__day-text">{{.Label}}</span>{{end}}
        <div class="calendar__day-box"></div>
        <div class="calendar__day-bullet"></div>
        {{- if .Today}}
        <div class="calendar__day-box-today"></div>
        {{- end}}
      </div>
{{- end}}
{{- range .Trailing}}
      <div class="calendar__day calendar__day-other">{{.}}</div>
{{- end}}
    </div>
  </div>
</div>{{end}}
{{- if .Document}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex, nofollow">
<title>{{.Header}}</title>
<style>
.calendar{--cal-color-primary:#ec407a;--cal-font-family-1:sans-serif;--cal-font-family-2:sans-serif;--cal-drop-shadow:0 4px 12px rgba(0,0,0,.15);--cal-border:1px solid #ddd;font-family:var(--cal-font-family-1);box-shadow:var(--cal-drop-shadow);border:var(--cal-border);width:22em;padding:1em}
.calendar__header{display:flex;justify-content:space-between;font-family:var(--cal-font-family-2)}
.calendar__weekdays,.calendar__days{display:grid;grid-template-columns:repeat(7,1fr);text-align:center}
.calendar__day-other{opacity:.35}
.calendar__day-event .calendar__day-bullet{width:4px;height:4px;margin:auto;border-radius:50%;background:var(--cal-color-primary)}
.calendar__day-selected .calendar__day-text{color:#fff;background:var(--cal-color-primary);border-radius:50%}
.calendar__day-today .calendar__day-text{font-weight:bold}
.calendar__arrow-prev .calendar__arrow-inner::before{content:"‹"}
.calendar__arrow-next .calendar__arrow-inner::before{content:"›"}
</style>
</head>
<body>
{{template "widget" .}}
</body>
</html>
{{- else}}{{template "widget" .}}{{end}}
`))

// WriteHTML writes the markup for m to w.
func WriteHTML(w io.Writer, m calendar.RenderModel, document bool, actionBase string) error {
	v := htmlView{
		Theme:    m.Style.Theme,
		Vars:     styleVars(m.Style),
		Header:   m.Header,
		Weekdays: m.Weekdays,
		Leading:  m.Grid.LeadingLabels(),
		Trailing: m.Grid.TrailingLabels(),
		Document: document,
	}
	base := strings.TrimRight(actionBase, "/")
	if actionBase != "" {
		v.PrevHref = base + "/nav?offset=-1"
		v.NextHref = base + "/nav?offset=1"
	}

	v.Days = make([]htmlCell, 0, len(m.Grid.Days))
	for _, d := range m.Grid.Days {
		today := m.IsToday(d.Number)
		classes := []string{"calendar__day"}
		if today {
			classes = append(classes, "calendar__day-today")
		}
		if m.DayMap[d.Number] {
			classes = append(classes, "calendar__day-event")
		} else {
			classes = append(classes, "calendar__day-no-event")
		}
		if d.Selected {
			classes = append(classes, "calendar__day-selected")
		}
		cell := htmlCell{
			Label:   d.Number,
			Classes: strings.Join(classes, " "),
			Today:   today,
		}
		if actionBase != "" {
			cell.Href = base + "/select?day=" + strconv.Itoa(d.Number)
		}
		v.Days = append(v.Days, cell)
	}

	return widgetTmpl.Execute(w, v)
}

// styleVars builds the CSS custom property overrides for the widget root.
func styleVars(s calendar.Style) template.CSS {
	var parts []string
	if v := cssSafe(s.Color); v != "" {
		parts = append(parts, "--cal-color-primary: "+v)
	}
	if v := cssSafe(s.FontFamily1); v != "" {
		parts = append(parts, "--cal-font-family-1: "+v)
	}
	if v := cssSafe(s.FontFamily2); v != "" {
		parts = append(parts, "--cal-font-family-2: "+v)
	}
	if !s.DropShadow {
		parts = append(parts, "--cal-drop-shadow: none")
	}
	if !s.Border {
		parts = append(parts, "--cal-border: none")
	}
	if len(parts) == 0 {
		return ""
	}
	return template.CSS(strings.Join(parts, "; ") + ";")
}

// cssSafe keeps only characters that can appear in colours and font lists.
func cssSafe(v string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(v) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(" #,.-_%()'", r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
