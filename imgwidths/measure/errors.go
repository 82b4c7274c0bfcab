package measure

import (
	"errors"
	"fmt"
)

var (
	// ErrSelectorNotFound is returned by an oracle when the selector matches
	// no element at the current viewport.
	ErrSelectorNotFound = errors.New("selector matched no element")

	// ErrEmptyDistribution means no in-range record carried any views.
	ErrEmptyDistribution = errors.New("empty demand distribution")

	// ErrInvalidRange is returned for a sweep range that is empty or non-positive.
	ErrInvalidRange = errors.New("invalid viewport range")

	// ErrInvalidCount is returned when fewer than one width is requested.
	ErrInvalidCount = errors.New("widths number must be >= 1")
)

// NavigationError means the page could not be loaded; no sweep happened.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// MeasurementError means the oracle failed at one viewport width. The sweep
// stops there; no partial mapping is returned.
type MeasurementError struct {
	Viewport int
	Selector string
	Err      error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("measure %q at viewport %d: %v", e.Selector, e.Viewport, e.Err)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// WriteError wraps a result sink failure. It never invalidates the computed
// report.
type WriteError struct {
	Sink string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
