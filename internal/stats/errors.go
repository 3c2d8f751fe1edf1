// ABOUTME: Error values returned by the statistics engine.
// ABOUTME: Callers compare them with errors.Is.
package stats

import "errors"

var (
	// ErrSingularFormula is returned when a 1RM formula's denominator is zero or negative.
	ErrSingularFormula = errors.New("formula undefined for this rep count")

	// ErrInvalidInput is returned for non-positive body measurements or loads.
	ErrInvalidInput = errors.New("invalid input")
)
