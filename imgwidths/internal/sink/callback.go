// CLAUDE:SUMMARY In-process callback sink delivering reports via a Go function call.
package sink

import (
	"context"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// ReportFunc is called once per report.
type ReportFunc func(ctx context.Context, r measure.Report) error

// Callback hands the report to Go code in the same binary, e.g. the HTTP
// server keeping its latest result in memory.
type Callback struct {
	fn ReportFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn ReportFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Name() string { return "callback" }

func (c *Callback) Send(ctx context.Context, r measure.Report) error {
	if c.fn != nil {
		return c.fn(ctx, r)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
