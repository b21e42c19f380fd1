package fractal

import "github.com/arloliu/fractal/types"

// Re-export types from the types package.
//
// Internal packages depend on `types` rather than on the root package, which
// avoids import cycles while still offering `fractal.Pixel`, `fractal.Logger`
// and friends to users.
type (
	Pixel       = types.Pixel
	Viewport    = types.Viewport
	WorkUnit    = types.WorkUnit
	UnitRecord  = types.UnitRecord
	WorkerState = types.WorkerState
)

// Re-export interfaces from the types package for convenience.
type (
	PartitionStrategy = types.PartitionStrategy
	ProgressRecorder  = types.ProgressRecorder
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
	Hooks             = types.Hooks
)

// Re-export WorkerState constants from the types package.
const (
	WorkerScanning    = types.WorkerScanning
	WorkerExecuting   = types.WorkerExecuting
	WorkerMarkingDone = types.WorkerMarkingDone
	WorkerIdle        = types.WorkerIdle
)
