// CLAUDE:SUMMARY File sink: sweep variations and demand as CSV (gocsv) plus the srcset attribute as text.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// CSVConfig names the output files. Empty paths are skipped.
type CSVConfig struct {
	VariationsFile string // viewport,imageWidth
	DestFile       string // width,share,views
	SrcsetFile     string // srcset attribute text
	SrcsetPattern  string // see measure.Plan.Srcset
}

// CSV writes a report's tables to files.
type CSV struct {
	cfg CSVConfig
}

// NewCSV creates a CSV sink.
func NewCSV(cfg CSVConfig) *CSV {
	return &CSV{cfg: cfg}
}

func (c *CSV) Name() string { return "csv" }

type destRow struct {
	Width int     `csv:"width"`
	Share float64 `csv:"share"`
	Views int     `csv:"views"`
}

func (c *CSV) Send(_ context.Context, r measure.Report) error {
	var errs []error

	if c.cfg.VariationsFile != "" {
		samples := r.Widths.Samples
		if err := writeCSV(c.cfg.VariationsFile, &samples); err != nil {
			errs = append(errs, fmt.Errorf("csv: variations: %w", err))
		}
	}

	if c.cfg.DestFile != "" {
		rows := make([]destRow, len(r.Demand.Entries))
		for i, e := range r.Demand.Entries {
			rows[i] = destRow{Width: e.Width, Share: e.Share, Views: e.Views}
		}
		if err := writeCSV(c.cfg.DestFile, &rows); err != nil {
			errs = append(errs, fmt.Errorf("csv: dest: %w", err))
		}
	}

	if c.cfg.SrcsetFile != "" {
		text := r.Plan.Srcset(c.cfg.SrcsetPattern) + "\n"
		if err := writeFile(c.cfg.SrcsetFile, []byte(text)); err != nil {
			errs = append(errs, fmt.Errorf("csv: srcset: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *CSV) Close() error { return nil }

func writeCSV(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(rows, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
