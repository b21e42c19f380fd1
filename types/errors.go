package types

import "errors"

// Sentinel errors for the fractal renderer.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// Components wrap them with context using fmt.Errorf("%s: %w", msg, err).

// Renderer errors - Public API errors returned by the Renderer.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIncompleteRender is returned when the collector does not hold exactly
	// one pixel per grid coordinate after all workers joined.
	ErrIncompleteRender = errors.New("incomplete render")

	// ErrOutput is returned when the rendered image cannot be written.
	ErrOutput = errors.New("failed to write output")
)

// Partitioner errors.
var (
	// ErrInvalidPartition is returned when the task list cannot be built from the
	// given height, thread count and granularity.
	ErrInvalidPartition = errors.New("invalid partition parameters")
)

// Progress recorder errors.
var (
	// ErrRecordFailed is returned when a work unit record cannot be stored.
	ErrRecordFailed = errors.New("failed to record work unit")
)
