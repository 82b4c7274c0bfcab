// CLAUDE:SUMMARY Drives the layout oracle across every integer viewport width and records the rendered element width.
// Package sweep measures an element's rendered width at every integer
// viewport width of a range.
//
// The oracle's viewport is shared mutable state: a Controller is its only
// writer for the duration of Run, and iterations never overlap.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// Oracle is a layout engine that can be resized and queried. Implementations
// need not be safe for concurrent use.
type Oracle interface {
	Resize(ctx context.Context, width, height int, scale float64) error
	Measure(ctx context.Context, selector string) (int, error)
}

// DefaultHeight keeps the page tall enough that wrapping depends on width only.
const DefaultHeight = 10000

// Config configures a Controller.
type Config struct {
	Oracle   Oracle
	Selector string

	// SettleDelay is waited after each resize so CSS and scripts can react.
	SettleDelay time.Duration

	// Height of the emulated viewport. Default: DefaultHeight.
	Height int

	// StepTimeout bounds each resize and each measurement. 0 = no bound.
	StepTimeout time.Duration

	// Progress, when set, is called after every measured width.
	Progress func(done, total int)

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Controller runs sweeps against one oracle.
type Controller struct {
	cfg Config
}

// New creates a Controller.
func New(cfg Config) *Controller {
	cfg.defaults()
	return &Controller{cfg: cfg}
}

// Run measures every width of r in ascending order. It stops at the first
// failure and returns a *measure.MeasurementError; on success the result
// covers r exactly.
func (c *Controller) Run(ctx context.Context, r measure.Range) (measure.Widths, error) {
	if err := r.Validate(); err != nil {
		return measure.Widths{}, fmt.Errorf("sweep: %w", err)
	}
	if c.cfg.Oracle == nil {
		return measure.Widths{}, errors.New("sweep: no oracle")
	}
	if c.cfg.Selector == "" {
		return measure.Widths{}, errors.New("sweep: empty selector")
	}
	if c.cfg.SettleDelay < 0 {
		return measure.Widths{}, fmt.Errorf("sweep: negative settle delay %s", c.cfg.SettleDelay)
	}

	log := c.cfg.Logger
	total := r.Len()
	out := measure.Widths{Range: r, Samples: make([]measure.Sample, 0, total)}
	start := time.Now()

	log.Info("sweep: starting", "min", r.Min, "max", r.Max, "selector", c.cfg.Selector, "delay", c.cfg.SettleDelay)

	for w := r.Min; w <= r.Max; w++ {
		px, err := c.step(ctx, w)
		if err != nil {
			return measure.Widths{}, &measure.MeasurementError{Viewport: w, Selector: c.cfg.Selector, Err: err}
		}
		out.Samples = append(out.Samples, measure.Sample{Viewport: w, Width: px})
		log.Debug("sweep: measured", "viewport", w, "width", px)

		if c.cfg.Progress != nil {
			c.cfg.Progress(len(out.Samples), total)
		}
	}

	log.Info("sweep: done", "widths", total, "elapsed", time.Since(start))
	return out, nil
}

// step resizes, settles and measures one viewport width.
func (c *Controller) step(ctx context.Context, width int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	stepCtx, cancel := c.stepContext(ctx)
	err := c.cfg.Oracle.Resize(stepCtx, width, c.cfg.Height, 1)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("resize: %w", err)
	}

	if err := sleepCtx(ctx, c.cfg.SettleDelay); err != nil {
		return 0, err
	}

	stepCtx, cancel = c.stepContext(ctx)
	defer cancel()
	px, err := c.cfg.Oracle.Measure(stepCtx, c.cfg.Selector)
	if err != nil {
		return 0, err
	}
	if px < 0 {
		return 0, fmt.Errorf("negative width %d", px)
	}
	return px, nil
}

func (c *Controller) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.StepTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.StepTimeout)
	}
	return context.WithCancel(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
