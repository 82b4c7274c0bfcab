// CLAUDE:SUMMARY CLI entry point for imgwidths: one-shot srcset width run, or -serve for the HTTP API and MCP endpoint.
// Command imgwidths measures an element across viewport widths in headless
// Chrome and prints the srcset widths that best serve real visitors.
//
// Usage:
//
//	imgwidths -config imgwidths.yaml
//	imgwidths -url https://example.com -selector img.hero -contexts contexts.csv -widths 5
//	imgwidths -serve :8090 -db data/runs.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/rwd/imgwidths"
	"github.com/hazyhaar/rwd/imgwidths/measure"
)

func main() {
	configPath := flag.String("config", "", "path to imgwidths.yaml config file")
	url := flag.String("url", "", "page to measure")
	selector := flag.String("selector", "", "CSS selector of the image element")
	contextsFile := flag.String("contexts", "", "visitor contexts CSV (viewport,density,views)")
	variations := flag.String("variations", "", "write viewport → image width CSV here")
	dest := flag.String("dest", "", "write the demand distribution CSV here")
	srcsetFile := flag.String("srcset", "", "write the srcset attribute here")
	chart := flag.String("chart", "", "write a demand chart here (.png, .svg, .pdf)")
	dbPath := flag.String("db", "", "SQLite run history")
	minVW := flag.Int("min", 0, "minimum viewport width (default: from contexts)")
	maxVW := flag.Int("max", 0, "maximum viewport width (default: from contexts)")
	delay := flag.Duration("delay", imgwidths.DefaultConfig().Delay, "settle delay after each resize")
	widths := flag.Int("widths", imgwidths.DefaultConfig().WidthsNumber, "number of srcset widths to select")
	verbose := flag.Bool("verbose", false, "print sweep progress")
	serveAddr := flag.String("serve", "", "serve the HTTP API and MCP on this address instead of running")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	level := new(slog.LevelVar)
	switch *logLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := imgwidths.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = imgwidths.LoadConfigFile(*configPath)
		if err != nil {
			logger.Error("imgwidths: load config", "error", err)
			os.Exit(1)
		}
	}

	// Flags given explicitly win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = *url
		case "selector":
			cfg.Selector = *selector
		case "contexts":
			cfg.ContextsFile = *contextsFile
		case "variations":
			cfg.VariationsFile = *variations
		case "dest":
			cfg.DestFile = *dest
		case "srcset":
			cfg.SrcsetFile = *srcsetFile
		case "chart":
			cfg.ChartFile = *chart
		case "db":
			cfg.DBPath = *dbPath
		case "min":
			cfg.MinViewport = *minVW
		case "max":
			cfg.MaxViewport = *maxVW
		case "delay":
			cfg.Delay = *delay
		case "widths":
			cfg.WidthsNumber = *widths
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
	if cfg.Verbose {
		level.Set(slog.LevelDebug)
	}

	var err error
	if *serveAddr != "" {
		err = serve(ctx, logger, cfg, *serveAddr)
	} else {
		err = runOnce(ctx, logger, cfg)
	}
	if err != nil {
		logger.Error("imgwidths: fatal", "error", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, logger *slog.Logger, cfg *imgwidths.Config) error {
	var st *imgwidths.Store
	if cfg.DBPath != "" {
		var err error
		st, err = imgwidths.OpenStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	opts := []imgwidths.Option{
		imgwidths.WithLogger(logger),
		imgwidths.WithSinks(imgwidths.SinksFromConfig(cfg, st, logger)...),
	}
	if cfg.Verbose {
		opts = append(opts, imgwidths.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rmeasured %d/%d viewports", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	runner := imgwidths.NewRunner(cfg, opts...)
	defer runner.Close()

	rep, err := runner.Run(ctx)
	var writeErr *measure.WriteError
	if err != nil && (rep == nil || !errors.As(err, &writeErr)) {
		return err
	}
	if err != nil {
		logger.Warn("imgwidths: some outputs were not written", "error", err)
	}

	fmt.Println(rep.Plan.Srcset(cfg.SrcsetPattern))
	return nil
}

func serve(ctx context.Context, logger *slog.Logger, cfg *imgwidths.Config, addr string) error {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "data/imgwidths.db"
	}
	st, err := imgwidths.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("imgwidths: shutdown", "error", err)
		}
	}()

	logger.Info("imgwidths: listening", "addr", addr, "db", dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
