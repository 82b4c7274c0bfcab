// CLAUDE:SUMMARY Orchestrates one imgwidths run: contexts → bounds → Chrome → sweep → demand → srcset → sinks.
// Package imgwidths measures how wide a page element renders across viewport
// widths and turns real visitor analytics into the handful of image widths a
// srcset should offer.
//
// A run loads the visitor contexts, derives the viewport range, sweeps that
// range in a headless Chrome, aggregates perfect widths weighted by views and
// selects the widths minimising expected wasted pixels. Reports go to sinks
// (files, chart, SQLite history, webhook, callback).
package imgwidths

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/rwd/idgen"
	"github.com/hazyhaar/rwd/imgwidths/internal/browser"
	"github.com/hazyhaar/rwd/imgwidths/internal/contexts"
	"github.com/hazyhaar/rwd/imgwidths/internal/sink"
	"github.com/hazyhaar/rwd/imgwidths/internal/sweep"
	"github.com/hazyhaar/rwd/imgwidths/measure"
	"github.com/hazyhaar/rwd/kit"
)

// PageOracle is the layout oracle a run drives: it loads the page once, then
// resizes and measures. The Chrome-backed implementation is used unless
// WithOracle supplies another.
type PageOracle interface {
	sweep.Oracle
	Navigate(ctx context.Context, url string) error
}

// Runner executes runs for one configuration. It is not safe for concurrent
// Run calls: the oracle's viewport is shared state.
type Runner struct {
	cfg      *Config
	logger   *slog.Logger
	sinkR    *sink.Router
	sinks    []Sink
	oracle   PageOracle
	progress func(done, total int)
	newID    idgen.Generator
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

// WithSinks adds result sinks.
func WithSinks(s ...Sink) Option { return func(r *Runner) { r.sinks = append(r.sinks, s...) } }

// WithOracle replaces Chrome with the given oracle.
func WithOracle(o PageOracle) Option { return func(r *Runner) { r.oracle = o } }

// WithProgress sets a callback invoked after every measured viewport.
func WithProgress(fn func(done, total int)) Option { return func(r *Runner) { r.progress = fn } }

// NewRunner creates a Runner.
func NewRunner(cfg *Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: slog.Default(),
		newID:  idgen.Run,
		now:    time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	r.sinkR = sink.NewRouter(r.logger, r.sinks...)
	return r
}

// Run performs one full run. Navigation, measurement and empty-distribution
// failures abort and return no report. Sink failures do not: the report is
// returned together with the joined *measure.WriteError values.
func (r *Runner) Run(ctx context.Context) (*measure.Report, error) {
	cfg := r.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	records, err := contexts.LoadFile(cfg.ContextsFile)
	if err != nil {
		return nil, fmt.Errorf("imgwidths: %w", err)
	}
	records = contexts.Normalize(records)

	rng, err := contexts.DeriveBounds(records, contexts.BoundsOptions{
		Coverage: cfg.Coverage,
		Min:      cfg.MinViewport,
		Max:      cfg.MaxViewport,
	})
	if err != nil {
		return nil, fmt.Errorf("imgwidths: %w", err)
	}
	r.logger.Info("imgwidths: viewport range",
		"min", rng.Min, "max", rng.Max, "contexts", len(records))

	oracle, release, err := r.openOracle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	navCtx, cancel := context.WithTimeout(ctx, cfg.NavTimeout)
	err = oracle.Navigate(navCtx, cfg.URL)
	cancel()
	if err != nil {
		return nil, err
	}

	widths, err := sweep.New(sweep.Config{
		Oracle:      oracle,
		Selector:    cfg.Selector,
		SettleDelay: cfg.Delay,
		Height:      cfg.Height,
		StepTimeout: cfg.StepTimeout,
		Progress:    r.progress,
		Logger:      r.logger,
	}).Run(ctx, rng)
	if err != nil {
		return nil, err
	}

	d, plan, err := Compute(widths, records, cfg.WidthsNumber)
	if err != nil {
		return nil, err
	}
	if d.Excluded > 0 {
		r.logger.Info("imgwidths: contexts outside range ignored", "count", d.Excluded)
	}

	rep := &measure.Report{
		RunID:     r.newID(),
		URL:       cfg.URL,
		Selector:  cfg.Selector,
		CreatedAt: r.now().UnixMilli(),
		Widths:    widths,
		Demand:    d,
		Plan:      plan,
	}
	r.logger.Info("imgwidths: run complete",
		"run_id", rep.RunID, "widths", plan.Widths, "waste", plan.Waste, "sinks", r.sinkR.Len())

	sinkErr := r.sinkR.Send(kit.WithRunID(ctx, rep.RunID), *rep)
	return rep, sinkErr
}

// Close closes the sinks.
func (r *Runner) Close() error {
	return r.sinkR.Close()
}

func (r *Runner) openOracle(ctx context.Context) (PageOracle, func(), error) {
	if r.oracle != nil {
		return r.oracle, func() {}, nil
	}

	b := r.cfg.Browser
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        b.Remote,
		Bin:              b.Bin,
		NoSandbox:        b.NoSandbox,
		ResourceBlocking: b.ResourceBlocking,
		Stealth:          browser.ParseStealth(b.Stealth),
		Logger:           r.logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("imgwidths: start browser: %w", err)
	}
	page, err := browser.OpenPage(ctx, mgr)
	if err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("imgwidths: %w", err)
	}
	return page, func() {
		if err := page.Close(); err != nil {
			r.logger.Debug("imgwidths: close page", "error", err)
		}
		if err := mgr.Close(); err != nil {
			r.logger.Warn("imgwidths: close browser", "error", err)
		}
	}, nil
}
