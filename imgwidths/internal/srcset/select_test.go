package srcset

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

func demandOf(pairs map[int]float64) measure.Demand {
	var d measure.Demand
	for w, s := range pairs {
		d.Entries = append(d.Entries, measure.DemandEntry{Width: w, Share: s})
	}
	measure.SortEntries(d.Entries)
	return d
}

func TestSelect_MinimalWastePartition(t *testing.T) {
	d := demandOf(map[int]float64{100: 0.5, 200: 0.3, 400: 0.2})

	plan, err := Select(d, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan.Widths, []int{200, 400}) {
		t.Fatalf("widths: got %v, want [200 400]", plan.Widths)
	}
	if math.Abs(plan.Waste-50) > 1e-9 {
		t.Fatalf("waste: got %v, want 50", plan.Waste)
	}

	for _, alt := range [][]int{{100, 400}, {300, 400}, {400, 500}, {250, 400}} {
		w, err := Waste(d, alt)
		if err != nil {
			t.Fatalf("waste %v: %v", alt, err)
		}
		if w < plan.Waste {
			t.Errorf("alternative %v has waste %v < %v", alt, w, plan.Waste)
		}
	}
}

func TestSelect_SingleWidthIsMaximum(t *testing.T) {
	d := demandOf(map[int]float64{300: 10.0 / 15, 602: 5.0 / 15})
	plan, err := Select(d, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan.Widths, []int{602}) {
		t.Fatalf("widths: got %v, want [602]", plan.Widths)
	}
}

func TestSelect_FewerWidthsThanRequested(t *testing.T) {
	d := demandOf(map[int]float64{640: 0.25, 320: 0.75})
	plan, err := Select(d, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan.Widths, []int{320, 640}) {
		t.Fatalf("widths: got %v, want [320 640]", plan.Widths)
	}
	if plan.Waste != 0 {
		t.Fatalf("waste: got %v, want 0", plan.Waste)
	}
	if plan.Requested != 5 {
		t.Fatalf("requested: got %d", plan.Requested)
	}
}

func TestSelect_ZeroWidthNeverRepresents(t *testing.T) {
	d := demandOf(map[int]float64{0: 0.1, 100: 0.6, 300: 0.3})
	plan, err := Select(d, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan.Widths, []int{100, 300}) {
		t.Fatalf("widths: got %v, want [100 300]", plan.Widths)
	}

	if _, err := Select(demandOf(map[int]float64{0: 1}), 2); !errors.Is(err, ErrNoPositiveWidth) {
		t.Fatalf("zero only: got %v", err)
	}
}

func TestSelect_InvalidInput(t *testing.T) {
	if _, err := Select(demandOf(map[int]float64{1: 1}), 0); !errors.Is(err, measure.ErrInvalidCount) {
		t.Errorf("n=0: got %v", err)
	}
	if _, err := Select(measure.Demand{}, 3); !errors.Is(err, measure.ErrEmptyDistribution) {
		t.Errorf("empty: got %v", err)
	}
	dup := measure.Demand{Entries: []measure.DemandEntry{{Width: 5, Share: 0.5}, {Width: 5, Share: 0.5}}}
	if _, err := Select(dup, 1); err == nil {
		t.Error("duplicate widths: want error")
	}
}

func TestWaste_Uncovered(t *testing.T) {
	d := demandOf(map[int]float64{100: 0.5, 900: 0.5})
	if _, err := Waste(d, []int{500}); !errors.Is(err, ErrUncovered) {
		t.Fatalf("got %v, want ErrUncovered", err)
	}
}

// bruteForce enumerates every k-subset of the demand widths.
func bruteForce(t *testing.T, d measure.Demand, k int) float64 {
	t.Helper()
	widths := make([]int, 0, d.Len())
	for _, e := range d.ByWidth() {
		widths = append(widths, e.Width)
	}
	bestWaste := math.Inf(1)
	var pick func(start int, chosen []int)
	pick = func(start int, chosen []int) {
		if len(chosen) == k {
			if w, err := Waste(d, chosen); err == nil && w < bestWaste {
				bestWaste = w
			}
			return
		}
		for i := start; i < len(widths); i++ {
			pick(i+1, append(chosen, widths[i]))
		}
	}
	pick(0, nil)
	return bestWaste
}

func TestSelect_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 40; round++ {
		size := 2 + rng.Intn(8)
		views := make(map[int]int)
		total := 0
		for len(views) < size {
			w := 50 + rng.Intn(1500)
			if _, ok := views[w]; ok {
				continue
			}
			v := 1 + rng.Intn(100)
			views[w] = v
			total += v
		}
		var d measure.Demand
		for w, v := range views {
			d.Entries = append(d.Entries, measure.DemandEntry{Width: w, Views: v, Share: float64(v) / float64(total)})
		}
		measure.SortEntries(d.Entries)

		for k := 1; k <= size; k++ {
			plan, err := Select(d, k)
			if err != nil {
				t.Fatalf("round %d k=%d: %v", round, k, err)
			}
			if len(plan.Widths) != k {
				t.Fatalf("round %d k=%d: got %d widths", round, k, len(plan.Widths))
			}
			for i := 1; i < len(plan.Widths); i++ {
				if plan.Widths[i] <= plan.Widths[i-1] {
					t.Fatalf("round %d k=%d: not strictly ascending %v", round, k, plan.Widths)
				}
			}
			for _, e := range d.Entries {
				if _, ok := plan.Serves(e.Width); !ok {
					t.Fatalf("round %d k=%d: width %d not covered by %v", round, k, e.Width, plan.Widths)
				}
			}
			want := bruteForce(t, d, k)
			if math.Abs(plan.Waste-want) > 1e-9 {
				t.Fatalf("round %d k=%d: waste %v, brute force %v", round, k, plan.Waste, want)
			}
		}
	}
}

func TestSelect_Idempotent(t *testing.T) {
	d := demandOf(map[int]float64{320: 0.1, 480: 0.2, 640: 0.3, 960: 0.25, 1280: 0.15})
	a, err := Select(d, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Select(d, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("not idempotent: %+v vs %+v", a, b)
	}
}
