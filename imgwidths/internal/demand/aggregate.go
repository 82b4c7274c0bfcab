// CLAUDE:SUMMARY Turns a sweep mapping plus visitor records into the normalised perfect-width demand distribution.
// Package demand aggregates visitor records into a perfect-width demand
// distribution.
package demand

import (
	"fmt"
	"math"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// PerfectWidth is the source image width a visitor needs: the rendered width
// scaled by the device pixel density, always rounded up. Products within
// ceilSlack of an integer are treated as that integer (300 × 1.1 is 330).
func PerfectWidth(rendered int, density float64) int {
	return int(math.Ceil(float64(rendered)*density - ceilSlack))
}

const ceilSlack = 1e-9

// Aggregate resolves every in-range record against widths and returns the
// normalised demand. Records outside widths.Range are skipped and counted in
// Demand.Excluded. A record inside the range without a measurement is an
// error: the sweep must be complete.
func Aggregate(widths measure.Widths, records []measure.VisitorRecord) (measure.Demand, error) {
	views := make(map[int]int)
	order := make([]int, 0)
	total := 0
	excluded := 0

	for _, r := range records {
		if !widths.Range.Contains(r.Viewport) {
			excluded++
			continue
		}
		if err := r.Validate(); err != nil {
			return measure.Demand{}, fmt.Errorf("demand: record %+v: %w", r, err)
		}
		rendered, ok := widths.Lookup(r.Viewport)
		if !ok {
			return measure.Demand{}, fmt.Errorf("demand: no measurement for viewport %d", r.Viewport)
		}
		if r.Views == 0 {
			continue
		}
		w := PerfectWidth(rendered, r.Density)
		if _, seen := views[w]; !seen {
			order = append(order, w)
		}
		views[w] += r.Views
		total += r.Views
	}

	if total == 0 {
		return measure.Demand{Excluded: excluded}, fmt.Errorf("demand: %w", measure.ErrEmptyDistribution)
	}

	entries := make([]measure.DemandEntry, 0, len(order))
	for _, w := range order {
		entries = append(entries, measure.DemandEntry{
			Width: w,
			Views: views[w],
			Share: float64(views[w]) / float64(total),
		})
	}
	measure.SortEntries(entries)

	return measure.Demand{Entries: entries, TotalViews: total, Excluded: excluded}, nil
}
