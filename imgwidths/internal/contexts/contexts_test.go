package contexts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

const sample = `viewport,density,views
360,3,120
1920,1,80
360,3,30
768,2,0
1280,1.5,50
`

func TestLoad(t *testing.T) {
	records, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("records: got %d, want 5", len(records))
	}
	if records[4] != (measure.VisitorRecord{Viewport: 1280, Density: 1.5, Views: 50}) {
		t.Fatalf("records[4]: got %+v", records[4])
	}
}

func TestLoad_InvalidRow(t *testing.T) {
	_, err := Load(strings.NewReader("viewport,density,views\n360,2,10\n0,1,5\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("got %v, want line 3 error", err)
	}
	_, err = Load(strings.NewReader("viewport,density,views\n360,-1,10\n"))
	if err == nil {
		t.Fatal("negative density: want error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("records: got %d", len(records))
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("missing file: want error")
	}
}

func TestNormalize(t *testing.T) {
	records, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	got := Normalize(records)
	want := []measure.VisitorRecord{
		{Viewport: 360, Density: 3, Views: 150},
		{Viewport: 1280, Density: 1.5, Views: 50},
		{Viewport: 1920, Density: 1, Views: 80},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDeriveBounds(t *testing.T) {
	records := []measure.VisitorRecord{
		{Viewport: 320, Density: 2, Views: 1},
		{Viewport: 400, Density: 2, Views: 49},
		{Viewport: 1200, Density: 1, Views: 49},
		{Viewport: 2560, Density: 1, Views: 1},
	}

	r, err := DeriveBounds(records, BoundsOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if r != (measure.Range{Min: 320, Max: 2560}) {
		t.Errorf("full coverage: got %+v", r)
	}

	r, err = DeriveBounds(records, BoundsOptions{Coverage: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if r != (measure.Range{Min: 400, Max: 1200}) {
		t.Errorf("90%% coverage: got %+v", r)
	}

	r, err = DeriveBounds(records, BoundsOptions{Min: 300, Max: 1440})
	if err != nil {
		t.Fatal(err)
	}
	if r != (measure.Range{Min: 300, Max: 1440}) {
		t.Errorf("override: got %+v", r)
	}

	r, err = DeriveBounds(records, BoundsOptions{Max: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if r != (measure.Range{Min: 320, Max: 1000}) {
		t.Errorf("max override: got %+v", r)
	}
}

func TestDeriveBounds_Errors(t *testing.T) {
	if _, err := DeriveBounds(nil, BoundsOptions{}); !errors.Is(err, measure.ErrEmptyDistribution) {
		t.Errorf("empty: got %v", err)
	}
	records := []measure.VisitorRecord{{Viewport: 800, Density: 1, Views: 3}}
	if _, err := DeriveBounds(records, BoundsOptions{Coverage: 1.5}); err == nil {
		t.Error("coverage > 1: want error")
	}
	if _, err := DeriveBounds(records, BoundsOptions{Min: 900}); !errors.Is(err, measure.ErrInvalidRange) {
		t.Errorf("min > max: got %v", err)
	}
}
