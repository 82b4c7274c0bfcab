package measure

import (
	"strconv"
	"strings"
)

// Plan is the selected set of image widths, strictly ascending.
type Plan struct {
	Widths    []int   `json:"widths"`
	Requested int     `json:"requested"`
	Waste     float64 `json:"waste"` // Σ (served − perfect) × share
}

// Srcset renders the plan as a srcset attribute value. pattern is the image
// URL template; "{width}" is replaced by each width. An empty pattern yields
// bare descriptors ("320w, 640w").
func (p Plan) Srcset(pattern string) string {
	parts := make([]string, 0, len(p.Widths))
	for _, w := range p.Widths {
		ws := strconv.Itoa(w)
		if pattern == "" {
			parts = append(parts, ws+"w")
			continue
		}
		parts = append(parts, strings.ReplaceAll(pattern, "{width}", ws)+" "+ws+"w")
	}
	return strings.Join(parts, ", ")
}

// Serves returns the smallest plan width >= perfect, or false when every
// plan width is too small.
func (p Plan) Serves(perfect int) (int, bool) {
	for _, w := range p.Widths {
		if w >= perfect {
			return w, true
		}
	}
	return 0, false
}
