package demand

import (
	"errors"
	"math"
	"testing"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

func TestFromEntries_Shares(t *testing.T) {
	d, err := FromEntries([]measure.DemandEntry{
		{Width: 400, Share: 2},
		{Width: 100, Share: 5},
		{Width: 200, Share: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []measure.DemandEntry{
		{Width: 100, Share: 0.5},
		{Width: 200, Share: 0.3},
		{Width: 400, Share: 0.2},
	}
	if len(d.Entries) != len(want) {
		t.Fatalf("entries: got %+v", d.Entries)
	}
	for i, e := range d.Entries {
		if e.Width != want[i].Width || math.Abs(e.Share-want[i].Share) > 1e-12 {
			t.Errorf("entry %d: got %+v, want %+v", i, e, want[i])
		}
	}
}

func TestFromEntries_ViewsWinAndMerge(t *testing.T) {
	d, err := FromEntries([]measure.DemandEntry{
		{Width: 300, Views: 1, Share: 0.9},
		{Width: 300, Views: 2},
		{Width: 600, Views: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.TotalViews != 4 || d.Len() != 2 {
		t.Fatalf("got %+v", d)
	}
	if d.Entries[0].Width != 300 || d.Entries[0].Views != 3 || d.Entries[0].Share != 0.75 {
		t.Errorf("merged entry: got %+v", d.Entries[0])
	}
	if math.Abs(shareSum(d)-1) > 1e-9 {
		t.Errorf("share sum: got %v", shareSum(d))
	}
}

func TestFromEntries_Invalid(t *testing.T) {
	if _, err := FromEntries(nil); !errors.Is(err, measure.ErrEmptyDistribution) {
		t.Errorf("nil: got %v", err)
	}
	if _, err := FromEntries([]measure.DemandEntry{{Width: 100}}); !errors.Is(err, measure.ErrEmptyDistribution) {
		t.Errorf("all zero: got %v", err)
	}
	if _, err := FromEntries([]measure.DemandEntry{{Width: -1, Views: 1}}); err == nil {
		t.Error("negative width: want error")
	}
}
