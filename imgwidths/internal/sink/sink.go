// Package sink defines output backends for imgwidths run reports.
package sink

import (
	"context"

	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// Sink delivers a finished report to one backend (stdout, files, SQLite,
// chart, webhook, in-process callback).
type Sink interface {
	Name() string
	Send(ctx context.Context, r measure.Report) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
