package measure

import "sort"

// DemandEntry is one perfect width and the share of views that want it.
type DemandEntry struct {
	Width int     `json:"width" csv:"width"`
	Views int     `json:"views" csv:"views"`
	Share float64 `json:"share" csv:"share"`
}

// Demand is the demand distribution over perfect widths. Entries are kept in
// presentation order: descending share, ascending width on ties.
type Demand struct {
	Entries    []DemandEntry `json:"entries"`
	TotalViews int           `json:"total_views"`
	Excluded   int           `json:"excluded,omitempty"` // records outside the sweep range
}

// SortEntries puts entries in presentation order.
func SortEntries(entries []DemandEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Share != entries[j].Share {
			return entries[i].Share > entries[j].Share
		}
		return entries[i].Width < entries[j].Width
	})
}

// ByWidth returns a copy of the entries sorted ascending by width.
func (d *Demand) ByWidth() []DemandEntry {
	out := make([]DemandEntry, len(d.Entries))
	copy(out, d.Entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Width < out[j].Width })
	return out
}

// Share returns the share of views wanting exactly width.
func (d *Demand) Share(width int) float64 {
	for _, e := range d.Entries {
		if e.Width == width {
			return e.Share
		}
	}
	return 0
}

// Len is the number of distinct perfect widths.
func (d *Demand) Len() int { return len(d.Entries) }
