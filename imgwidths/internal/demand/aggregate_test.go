package demand

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// shareSum is 1 within rounding for any non-empty distribution.
func shareSum(d measure.Demand) float64 {
	shares := make([]float64, len(d.Entries))
	for i, e := range d.Entries {
		shares[i] = e.Share
	}
	return floats.Sum(shares)
}

func identityWidths(min, max int) measure.Widths {
	w := measure.Widths{Range: measure.Range{Min: min, Max: max}}
	for v := min; v <= max; v++ {
		w.Samples = append(w.Samples, measure.Sample{Viewport: v, Width: v})
	}
	return w
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	widths := identityWidths(300, 302)
	records := []measure.VisitorRecord{
		{Viewport: 300, Density: 1, Views: 10},
		{Viewport: 301, Density: 2, Views: 5},
	}

	d, err := Aggregate(widths, records)
	if err != nil {
		t.Fatal(err)
	}
	if d.TotalViews != 15 {
		t.Fatalf("total: got %d, want 15", d.TotalViews)
	}
	if len(d.Entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(d.Entries))
	}
	if got := d.Share(300); math.Abs(got-10.0/15) > 1e-12 {
		t.Errorf("share(300): got %v", got)
	}
	if got := d.Share(602); math.Abs(got-5.0/15) > 1e-12 {
		t.Errorf("share(602): got %v", got)
	}
	if d.Entries[0].Width != 300 {
		t.Errorf("presentation order: first %d, want 300", d.Entries[0].Width)
	}
}

func TestAggregate_AccumulatesSamePerfectWidth(t *testing.T) {
	widths := identityWidths(100, 400)
	records := []measure.VisitorRecord{
		{Viewport: 200, Density: 2, Views: 3},
		{Viewport: 400, Density: 1, Views: 1},
		{Viewport: 100, Density: 1, Views: 4},
	}
	d, err := Aggregate(widths, records)
	if err != nil {
		t.Fatal(err)
	}
	// Equal shares order by ascending width.
	want := []measure.DemandEntry{
		{Width: 100, Views: 4, Share: 0.5},
		{Width: 400, Views: 4, Share: 0.5},
	}
	if !reflect.DeepEqual(d.Entries, want) {
		t.Fatalf("entries: got %+v, want %+v", d.Entries, want)
	}
}

func TestAggregate_ExcludesOutOfRange(t *testing.T) {
	widths := identityWidths(300, 302)
	records := []measure.VisitorRecord{
		{Viewport: 299, Density: 1, Views: 100},
		{Viewport: 301, Density: 1, Views: 1},
		{Viewport: 5000, Density: 3, Views: 100},
	}
	d, err := Aggregate(widths, records)
	if err != nil {
		t.Fatal(err)
	}
	if d.Excluded != 2 {
		t.Errorf("excluded: got %d, want 2", d.Excluded)
	}
	if d.TotalViews != 1 || d.Share(301) != 1 {
		t.Errorf("got %+v", d)
	}
}

func TestAggregate_EmptyDistribution(t *testing.T) {
	widths := identityWidths(300, 302)
	_, err := Aggregate(widths, []measure.VisitorRecord{{Viewport: 300, Density: 1, Views: 0}})
	if !errors.Is(err, measure.ErrEmptyDistribution) {
		t.Fatalf("got %v, want ErrEmptyDistribution", err)
	}
	_, err = Aggregate(widths, nil)
	if !errors.Is(err, measure.ErrEmptyDistribution) {
		t.Fatalf("nil records: got %v", err)
	}
}

func TestAggregate_MissingMeasurement(t *testing.T) {
	widths := measure.Widths{
		Range:   measure.Range{Min: 300, Max: 302},
		Samples: []measure.Sample{{Viewport: 300, Width: 300}},
	}
	_, err := Aggregate(widths, []measure.VisitorRecord{{Viewport: 301, Density: 1, Views: 1}})
	if err == nil {
		t.Fatal("want error for missing measurement")
	}
}

func TestPerfectWidth_RoundsUp(t *testing.T) {
	cases := []struct {
		rendered int
		density  float64
		want     int
	}{
		{300, 1, 300},
		{301, 2, 602},
		{333, 1.5, 500},
		{101, 2.625, 266},
		{0, 3, 0},
		{300, 1.1, 330},
	}
	for _, c := range cases {
		got := PerfectWidth(c.rendered, c.density)
		if got != c.want {
			t.Errorf("PerfectWidth(%d, %v): got %d, want %d", c.rendered, c.density, got, c.want)
		}
		if c.density >= 1 && got < c.rendered {
			t.Errorf("PerfectWidth(%d, %v) = %d below rendered width", c.rendered, c.density, got)
		}
	}
}

func TestAggregate_SharesSumToOne(t *testing.T) {
	widths := identityWidths(320, 1920)
	var records []measure.VisitorRecord
	for v := 320; v <= 1920; v += 37 {
		records = append(records, measure.VisitorRecord{Viewport: v, Density: 1 + float64(v%3)/2, Views: v % 17})
	}
	d, err := Aggregate(widths, records)
	if err != nil {
		t.Fatal(err)
	}
	if s := shareSum(d); math.Abs(s-1) > 1e-9 {
		t.Fatalf("share sum: got %v", s)
	}

	again, err := Aggregate(widths, records)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d, again) {
		t.Fatal("Aggregate is not idempotent")
	}
}
