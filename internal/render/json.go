package render

import (
	"encoding/json"
	"io"

	"monthcal/internal/calendar"
)

// JSON writes each render model as one JSON document.
type JSON struct {
	W      io.Writer
	Indent bool
}

func (j JSON) Render(m calendar.RenderModel) error {
	enc := json.NewEncoder(j.W)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m)
}

// Multi fans one render out to several renderers and returns the first error.
type Multi []calendar.Renderer

func (ms Multi) Render(m calendar.RenderModel) error {
	var first error
	for _, r := range ms {
		if r == nil {
			continue
		}
		if err := r.Render(m); err != nil && first == nil {
			first = err
		}
	}
	return first
}
