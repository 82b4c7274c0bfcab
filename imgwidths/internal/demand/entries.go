package demand

import (
	"fmt"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// FromEntries builds a normalised Demand from caller-supplied entries, as
// received by the API. Duplicate widths are merged. Weights come from Views
// when any entry has views, otherwise from Share.
func FromEntries(in []measure.DemandEntry) (measure.Demand, error) {
	byViews := false
	for _, e := range in {
		if e.Width < 0 || e.Views < 0 || e.Share < 0 {
			return measure.Demand{}, fmt.Errorf("demand: negative value in entry %+v", e)
		}
		if e.Views > 0 {
			byViews = true
		}
	}

	weight := make(map[int]float64)
	views := make(map[int]int)
	var order []int
	total := 0.0
	totalViews := 0
	for _, e := range in {
		w := e.Share
		if byViews {
			w = float64(e.Views)
		}
		if w == 0 {
			continue
		}
		if _, seen := weight[e.Width]; !seen {
			order = append(order, e.Width)
		}
		weight[e.Width] += w
		views[e.Width] += e.Views
		total += w
		totalViews += e.Views
	}
	if total == 0 {
		return measure.Demand{}, fmt.Errorf("demand: %w", measure.ErrEmptyDistribution)
	}

	entries := make([]measure.DemandEntry, 0, len(order))
	for _, w := range order {
		entries = append(entries, measure.DemandEntry{
			Width: w,
			Views: views[w],
			Share: weight[w] / total,
		})
	}
	measure.SortEntries(entries)
	return measure.Demand{Entries: entries, TotalViews: totalViews}, nil
}
