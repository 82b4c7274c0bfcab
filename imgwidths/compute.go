package imgwidths

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hazyhaar/rwd/imgwidths/internal/demand"
	"github.com/hazyhaar/rwd/imgwidths/internal/srcset"
	"github.com/hazyhaar/rwd/imgwidths/measure"
	"github.com/hazyhaar/rwd/kit"
)

// DefaultWidthsNumber is used by the API when a request leaves the count out.
const DefaultWidthsNumber = 5

var (
	// ErrInvalidRequest marks API errors caused by the caller's input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRunNotFound is returned for an unknown run id.
	ErrRunNotFound = errors.New("run not found")
)

// Compute is the browser-free tail of a run: aggregate the records against
// the measured widths, then select n representative widths.
func Compute(widths measure.Widths, records []measure.VisitorRecord, n int) (measure.Demand, measure.Plan, error) {
	d, err := demand.Aggregate(widths, records)
	if err != nil {
		return d, measure.Plan{}, err
	}
	plan, err := srcset.Select(d, n)
	if err != nil {
		return d, measure.Plan{}, err
	}
	return d, plan, nil
}

// Result is the response of the select and aggregate endpoints.
type Result struct {
	Demand measure.Demand `json:"demand"`
	Plan   measure.Plan   `json:"plan"`
	Srcset string         `json:"srcset"`
}

// SelectRequest asks for a plan over an explicit demand distribution.
// Entries carry views or, when no entry has views, relative shares.
type SelectRequest struct {
	Entries      []measure.DemandEntry `json:"entries"`
	WidthsNumber int                   `json:"widths_number"`
	Pattern      string                `json:"pattern"`
}

// AggregateRequest carries a measured sweep and visitor records.
type AggregateRequest struct {
	Samples      []measure.Sample        `json:"samples"`
	Records      []measure.VisitorRecord `json:"records"`
	WidthsNumber int                     `json:"widths_number"`
	Pattern      string                  `json:"pattern"`
}

// RunsRequest lists recent runs, or fetches one when ID is set.
type RunsRequest struct {
	ID    string `json:"id"`
	Limit int    `json:"limit"`
}

// SelectEndpoint computes a plan from a SelectRequest.
func SelectEndpoint() kit.Endpoint {
	return func(_ context.Context, req any) (any, error) {
		r := req.(*SelectRequest)
		d, err := demand.FromEntries(r.Entries)
		if err != nil {
			return nil, invalid(err)
		}
		plan, err := srcset.Select(d, widthsNumber(r.WidthsNumber))
		if err != nil {
			return nil, invalid(err)
		}
		return &Result{Demand: d, Plan: plan, Srcset: plan.Srcset(r.Pattern)}, nil
	}
}

// AggregateEndpoint computes demand and plan from an AggregateRequest.
func AggregateEndpoint() kit.Endpoint {
	return func(_ context.Context, req any) (any, error) {
		r := req.(*AggregateRequest)
		widths, err := widthsFromSamples(r.Samples)
		if err != nil {
			return nil, invalid(err)
		}
		d, plan, err := Compute(widths, r.Records, widthsNumber(r.WidthsNumber))
		if err != nil {
			return nil, invalid(err)
		}
		return &Result{Demand: d, Plan: plan, Srcset: plan.Srcset(r.Pattern)}, nil
	}
}

// RunsEndpoint serves the run history.
func RunsEndpoint(st *Store) kit.Endpoint {
	return func(ctx context.Context, req any) (any, error) {
		r := req.(*RunsRequest)
		if r.ID == "" {
			runs, err := st.ListRuns(ctx, r.Limit)
			if err != nil {
				return nil, err
			}
			if runs == nil {
				runs = []RunSummary{}
			}
			return runs, nil
		}
		rep, err := st.GetRun(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if rep == nil {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, r.ID)
		}
		return rep, nil
	}
}

func widthsNumber(n int) int {
	if n == 0 {
		return DefaultWidthsNumber
	}
	return n
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

// widthsFromSamples orders the samples and spans the range they cover.
func widthsFromSamples(samples []measure.Sample) (measure.Widths, error) {
	if len(samples) == 0 {
		return measure.Widths{}, errors.New("samples are required")
	}
	sorted := make([]measure.Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Viewport < sorted[j].Viewport })

	for i, s := range sorted {
		if s.Viewport <= 0 || s.Width < 0 {
			return measure.Widths{}, fmt.Errorf("sample %+v: viewport must be > 0 and width >= 0", s)
		}
		if i > 0 && sorted[i-1].Viewport == s.Viewport {
			return measure.Widths{}, fmt.Errorf("duplicate sample for viewport %d", s.Viewport)
		}
	}
	return measure.Widths{
		Range:   measure.Range{Min: sorted[0].Viewport, Max: sorted[len(sorted)-1].Viewport},
		Samples: sorted,
	}, nil
}
