// Package measure defines the data exchanged between the imgwidths stages.
// These types are the public contract: sinks, the HTTP API and MCP tools all
// speak in terms of Widths, Demand and Plan.
package measure

import (
	"fmt"
	"sort"
)

// VisitorRecord is one row of real-world analytics: how many views came from
// a given viewport width at a given pixel density.
type VisitorRecord struct {
	Viewport int     `json:"viewport" csv:"viewport"`
	Density  float64 `json:"density" csv:"density"`
	Views    int     `json:"views" csv:"views"`
}

// Validate checks the record invariants: viewport > 0, density > 0, views >= 0.
func (r VisitorRecord) Validate() error {
	if r.Viewport <= 0 {
		return fmt.Errorf("viewport must be > 0, got %d", r.Viewport)
	}
	if r.Density <= 0 {
		return fmt.Errorf("density must be > 0, got %g", r.Density)
	}
	if r.Views < 0 {
		return fmt.Errorf("views must be >= 0, got %d", r.Views)
	}
	return nil
}

// Range is an inclusive span of viewport widths to measure.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Validate checks 0 < Min <= Max.
func (r Range) Validate() error {
	if r.Min <= 0 || r.Max < r.Min {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Contains reports whether viewport falls inside the range.
func (r Range) Contains(viewport int) bool {
	return viewport >= r.Min && viewport <= r.Max
}

// Len is the number of integer widths in the range.
func (r Range) Len() int {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min + 1
}

// Sample is one measurement: the rendered element width at a viewport width.
type Sample struct {
	Viewport int `json:"viewport" csv:"viewport"`
	Width    int `json:"width" csv:"imageWidth"`
}

// Widths is the ordered viewport → rendered width mapping produced by a
// sweep. Samples are strictly ascending by Viewport.
type Widths struct {
	Range   Range    `json:"range"`
	Samples []Sample `json:"samples"`
}

// Lookup returns the rendered width measured at viewport.
func (w *Widths) Lookup(viewport int) (int, bool) {
	if !w.Range.Contains(viewport) {
		return 0, false
	}
	// Complete sweeps index directly; otherwise fall back to a search.
	if len(w.Samples) == w.Range.Len() {
		s := w.Samples[viewport-w.Range.Min]
		if s.Viewport == viewport {
			return s.Width, true
		}
	}
	i := sort.Search(len(w.Samples), func(i int) bool { return w.Samples[i].Viewport >= viewport })
	if i < len(w.Samples) && w.Samples[i].Viewport == viewport {
		return w.Samples[i].Width, true
	}
	return 0, false
}

// Complete reports whether the samples cover every integer in Range exactly
// once, in ascending order.
func (w *Widths) Complete() bool {
	if len(w.Samples) != w.Range.Len() {
		return false
	}
	for i, s := range w.Samples {
		if s.Viewport != w.Range.Min+i || s.Width < 0 {
			return false
		}
	}
	return true
}
