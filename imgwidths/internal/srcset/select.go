// CLAUDE:SUMMARY Picks N srcset widths minimising upward-assignment waste over a demand distribution (exact DP).
// Package srcset chooses the representative image widths for a demand
// distribution.
//
// A visitor whose perfect width is d is served the smallest selected width
// >= d, so the selection partitions the sorted demand widths into contiguous
// groups, each represented by its maximum. Select finds the partition that
// minimises Σ (groupMax − d) × share with a dynamic program over partition
// points: O(N·D²) time, O(N·D) memory for D distinct widths.
package srcset

import (
	"errors"
	"fmt"
	"math"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// ErrNoPositiveWidth means the distribution only wants zero-width images.
var ErrNoPositiveWidth = errors.New("srcset: demand has no positive width")

// Select returns the optimal plan of min(n, distinct positive widths) widths.
func Select(d measure.Demand, n int) (measure.Plan, error) {
	if n < 1 {
		return measure.Plan{}, fmt.Errorf("srcset: %w: %d", measure.ErrInvalidCount, n)
	}
	if len(d.Entries) == 0 {
		return measure.Plan{}, fmt.Errorf("srcset: %w", measure.ErrEmptyDistribution)
	}

	entries := d.ByWidth()
	for i := 1; i < len(entries); i++ {
		if entries[i].Width == entries[i-1].Width {
			return measure.Plan{}, fmt.Errorf("srcset: duplicate demand width %d", entries[i].Width)
		}
	}
	if entries[0].Width < 0 {
		return measure.Plan{}, fmt.Errorf("srcset: negative demand width %d", entries[0].Width)
	}

	// A zero perfect width can be grouped but never represent a group.
	zeroHead := entries[0].Width == 0
	positive := len(entries)
	if zeroHead {
		positive--
	}
	if positive == 0 {
		return measure.Plan{}, ErrNoPositiveWidth
	}

	k := min(n, positive)
	widths := solve(entries, k, zeroHead)

	plan := measure.Plan{Widths: widths, Requested: n}
	waste, err := Waste(d, widths)
	if err != nil {
		return measure.Plan{}, err
	}
	plan.Waste = waste
	return plan, nil
}

// solve runs the partition DP over entries (ascending, distinct) and returns
// the k group maxima in ascending order.
func solve(entries []measure.DemandEntry, k int, zeroHead bool) []int {
	size := len(entries)

	// Prefix sums of share and width×share make group cost O(1).
	share := make([]float64, size+1)
	moment := make([]float64, size+1)
	for i, e := range entries {
		share[i+1] = share[i] + e.Share
		moment[i+1] = moment[i] + float64(e.Width)*e.Share
	}
	cost := func(i, j int) float64 {
		return float64(entries[j].Width)*(share[j+1]-share[i]) - (moment[j+1] - moment[i])
	}

	inf := math.Inf(1)
	// best[g][j]: minimal waste covering entries[0..j] with g+1 groups, the
	// last group ending at j. from[g][j] is where that last group starts.
	best := make([][]float64, k)
	from := make([][]int, k)
	for g := range best {
		best[g] = make([]float64, size)
		from[g] = make([]int, size)
		for j := range best[g] {
			best[g][j] = inf
		}
	}

	for j := 0; j < size; j++ {
		if zeroHead && j == 0 {
			continue
		}
		best[0][j] = cost(0, j)
	}
	for g := 1; g < k; g++ {
		for j := g; j < size; j++ {
			// Earliest split wins on ties so results are reproducible.
			for i := g - 1; i < j; i++ {
				if math.IsInf(best[g-1][i], 1) {
					continue
				}
				c := best[g-1][i] + cost(i+1, j)
				if c < best[g][j] {
					best[g][j] = c
					from[g][j] = i + 1
				}
			}
		}
	}

	out := make([]int, k)
	j := size - 1
	for g := k - 1; g >= 0; g-- {
		out[g] = entries[j].Width
		if g > 0 {
			j = from[g][j] - 1
		}
	}
	return out
}
