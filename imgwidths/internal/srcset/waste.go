package srcset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// ErrUncovered means some demand width is larger than every plan width, so
// those visitors would get an upscaled image.
var ErrUncovered = errors.New("srcset: demand width not covered by plan")

// Waste returns Σ (served − d) × share for the given widths, where served is
// the smallest width >= d. widths need not be sorted.
func Waste(d measure.Demand, widths []int) (float64, error) {
	sorted := make([]int, len(widths))
	copy(sorted, widths)
	sort.Ints(sorted)

	var total float64
	for _, e := range d.ByWidth() {
		i := sort.SearchInts(sorted, e.Width)
		if i == len(sorted) {
			return 0, fmt.Errorf("%w: %d", ErrUncovered, e.Width)
		}
		total += float64(sorted[i]-e.Width) * e.Share
	}
	return total, nil
}
