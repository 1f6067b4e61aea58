package analysis

import "errors"

// Sentinel errors for the failure taxonomy shared by every stage. Wrap
// these with fmt.Errorf("...: %w", ...) so callers can test with errors.Is.
var (
	// ErrInvalidPeriod marks a period argument outside the peak set.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidThreshold marks a threshold argument outside its range.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrMissingColumn marks required input schema absent from the source.
	ErrMissingColumn = errors.New("missing input column")

	// ErrMissingMetric marks a derived metric read before its producing
	// stage has run.
	ErrMissingMetric = errors.New("missing computed metric")
)
