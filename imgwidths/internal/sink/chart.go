// CLAUDE:SUMMARY Chart sink: gonum/plot histogram of demand share by perfect width with the chosen srcset widths overlaid.
package sink

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// Chart renders the demand distribution to an image file. The format
// follows the extension (.png, .svg, .pdf).
type Chart struct {
	path   string
	width  vg.Length
	height vg.Length
}

// NewChart creates a Chart sink writing to path.
func NewChart(path string) *Chart {
	return &Chart{path: path, width: 8 * vg.Inch, height: 4 * vg.Inch}
}

func (c *Chart) Name() string { return "chart" }

func (c *Chart) Send(_ context.Context, r measure.Report) error {
	if len(r.Demand.Entries) == 0 {
		return fmt.Errorf("chart: empty demand")
	}
	p, err := demandPlot(r)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := p.Save(c.width, c.height, c.path); err != nil {
		return fmt.Errorf("chart: save: %w", err)
	}
	return nil
}

func (c *Chart) Close() error { return nil }

func demandPlot(r measure.Report) (*plot.Plot, error) {
	entries := r.Demand.ByWidth()
	pts := make(plotter.XYs, len(entries))
	maxShare := 0.0
	for i, e := range entries {
		pts[i].X = float64(e.Width)
		pts[i].Y = e.Share
		maxShare = max(maxShare, e.Share)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Perfect widths for %s", r.Selector)
	p.X.Label.Text = "Image width (px)"
	p.Y.Label.Text = "Share of views"
	p.Y.Min = 0

	// Histogram bins X weighted by Y, which is exactly demand share per width band.
	hist, err := plotter.NewHistogram(pts, histBins(len(entries)))
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	hist.FillColor = color.RGBA{R: 120, G: 160, B: 220, A: 255}
	p.Add(hist)

	top := maxShare
	for _, b := range hist.Bins {
		top = max(top, b.Weight)
	}
	for i, w := range r.Plan.Widths {
		line, err := plotter.NewLine(plotter.XYs{{X: float64(w), Y: 0}, {X: float64(w), Y: top}})
		if err != nil {
			return nil, fmt.Errorf("plan marker: %w", err)
		}
		line.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		if i == 0 {
			p.Legend.Add("srcset widths", line)
		}
	}
	p.Legend.Add("demand", hist)
	p.Legend.Top = true
	return p, nil
}

// histBins gives one bin per distinct width, capped so wide ranges stay readable.
func histBins(distinct int) int {
	return min(distinct, 60)
}
