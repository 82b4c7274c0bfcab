// CLAUDE:SUMMARY Loads visitor analytics CSV (viewport, density, views), merges duplicates and derives the sweep range.
// Package contexts loads the real-world browsing contexts (viewport width,
// pixel density, views) that weight the demand distribution.
package contexts

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// LoadFile reads a contexts CSV file with a "viewport,density,views" header.
func LoadFile(path string) ([]measure.VisitorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contexts: open: %w", err)
	}
	defer f.Close()

	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return records, nil
}

// Load parses contexts CSV from r and validates every row.
func Load(r io.Reader) ([]measure.VisitorRecord, error) {
	var records []measure.VisitorRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("contexts: parse: %w", err)
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			// +2: header line and 1-based numbering.
			return nil, fmt.Errorf("contexts: line %d: %w", i+2, err)
		}
	}
	return records, nil
}

// Normalize merges records sharing (viewport, density), drops records with
// no views and sorts by viewport then density. The input is not modified.
func Normalize(records []measure.VisitorRecord) []measure.VisitorRecord {
	type key struct {
		viewport int
		density  float64
	}
	views := make(map[key]int, len(records))
	for _, r := range records {
		views[key{r.Viewport, r.Density}] += r.Views
	}

	out := make([]measure.VisitorRecord, 0, len(views))
	for k, v := range views {
		if v == 0 {
			continue
		}
		out = append(out, measure.VisitorRecord{Viewport: k.viewport, Density: k.density, Views: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Viewport != out[j].Viewport {
			return out[i].Viewport < out[j].Viewport
		}
		return out[i].Density < out[j].Density
	})
	return out
}

// BoundsOptions controls DeriveBounds.
type BoundsOptions struct {
	// Coverage is the share of views the range must keep, trimmed evenly from
	// both tails. 0 or 1 keeps everything (exact min and max viewport).
	Coverage float64

	// Min and Max, when > 0, override the derived bound.
	Min int
	Max int
}

// DeriveBounds computes the viewport range to sweep from records weighted
// by views.
func DeriveBounds(records []measure.VisitorRecord, opts BoundsOptions) (measure.Range, error) {
	if opts.Coverage < 0 || opts.Coverage > 1 {
		return measure.Range{}, fmt.Errorf("contexts: coverage %g outside [0, 1]", opts.Coverage)
	}

	var r measure.Range
	if opts.Min <= 0 || opts.Max <= 0 {
		merged := Normalize(records)
		if len(merged) == 0 {
			return measure.Range{}, fmt.Errorf("contexts: bounds: %w", measure.ErrEmptyDistribution)
		}

		x := make([]float64, len(merged))
		weights := make([]float64, len(merged))
		for i, rec := range merged {
			x[i] = float64(rec.Viewport)
			weights[i] = float64(rec.Views)
		}

		coverage := opts.Coverage
		if coverage == 0 {
			coverage = 1
		}
		tail := (1 - coverage) / 2
		r.Min = int(stat.Quantile(tail, stat.Empirical, x, weights))
		r.Max = int(stat.Quantile(1-tail, stat.Empirical, x, weights))
	}

	if opts.Min > 0 {
		r.Min = opts.Min
	}
	if opts.Max > 0 {
		r.Max = opts.Max
	}
	if err := r.Validate(); err != nil {
		return measure.Range{}, fmt.Errorf("contexts: bounds: %w", err)
	}
	return r, nil
}
