package imgwidths

import (
	"io"
	"log/slog"

	"github.com/hazyhaar/rwd/imgwidths/internal/sink"
)

// Sink is the output interface for run reports.
type Sink = sink.Sink

// ReportFunc is called by a callback sink for each report.
type ReportFunc = sink.ReportFunc

// NewStdoutSink creates a stdout JSON-lines sink. A nil w means os.Stdout.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process callback sink.
func NewCallbackSink(fn ReportFunc) Sink {
	return sink.NewCallback(fn)
}

// NewStoreSink records reports in the run history.
func NewStoreSink(st *Store) Sink {
	return sink.NewStore(st)
}

// SinksFromConfig builds the sinks a configuration asks for: file outputs,
// chart, run history (when st is non-nil) and the extra sinks list.
func SinksFromConfig(cfg *Config, st *Store, logger *slog.Logger) []Sink {
	if logger == nil {
		logger = slog.Default()
	}

	var out []Sink
	if cfg.VariationsFile != "" || cfg.DestFile != "" || cfg.SrcsetFile != "" {
		out = append(out, sink.NewCSV(sink.CSVConfig{
			VariationsFile: cfg.VariationsFile,
			DestFile:       cfg.DestFile,
			SrcsetFile:     cfg.SrcsetFile,
			SrcsetPattern:  cfg.SrcsetPattern,
		}))
	}
	if cfg.ChartFile != "" {
		out = append(out, sink.NewChart(cfg.ChartFile))
	}
	if st != nil {
		out = append(out, NewStoreSink(st))
	}
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "stdout":
			out = append(out, NewStdoutSink(nil))
		case "webhook":
			out = append(out, NewWebhookSink(sc.URL, logger))
		default:
			logger.Warn("imgwidths: unknown sink type", "type", sc.Type)
		}
	}
	return out
}
