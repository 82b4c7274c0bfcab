package sink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// Router fans a report out to all configured sinks. One sink failing does
// not stop the others; every failure is logged and returned wrapped in a
// *measure.WriteError.
type Router struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRouter creates a fan-out router delivering to all sinks.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

// Len is the number of sinks behind the router.
func (r *Router) Len() int { return len(r.sinks) }

func (r *Router) Send(ctx context.Context, rep measure.Report) error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Send(ctx, rep); err != nil {
			r.logger.Warn("sink: send report failed", "sink", s.Name(), "run_id", rep.RunID, "error", err)
			errs = append(errs, &measure.WriteError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

func (r *Router) Close() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, &measure.WriteError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}
