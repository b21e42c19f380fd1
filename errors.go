package fractal

import "github.com/arloliu/fractal/types"

// Sentinel errors returned by the Renderer.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrIncompleteRender is returned when the collected pixels do not cover the grid exactly once.
	ErrIncompleteRender = types.ErrIncompleteRender

	// ErrOutput is returned when the image cannot be written.
	ErrOutput = types.ErrOutput

	// ErrInvalidPartition is returned when the task list cannot be built.
	ErrInvalidPartition = types.ErrInvalidPartition

	// ErrRecordFailed is returned by progress recorders that cannot store a record.
	ErrRecordFailed = types.ErrRecordFailed
)
