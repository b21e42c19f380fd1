package types

import "context"

// Hooks defines callbacks for render lifecycle events.
//
// All hooks are optional. They run synchronously on the worker goroutine that
// produced the event, so they must be safe for concurrent use and should return
// quickly: a slow hook delays the worker that called it.
//
// Hook errors are logged and forwarded to OnError; they never fail the render
// or interrupt a work unit.
//
// Example:
//
//	hooks := &fractal.Hooks{
//	    OnUnitCompleted: func(ctx context.Context, unit fractal.UnitRecord) error {
//	        progress.Add(unit.RowEnd - unit.RowStart)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnWorkerStateChanged is called when a worker loop changes state.
	OnWorkerStateChanged func(ctx context.Context, worker int, from, to WorkerState) error

	// OnUnitCompleted is called after a unit's completion flag is set.
	OnUnitCompleted func(ctx context.Context, unit UnitRecord) error

	// OnError is called when a hook or the progress recorder fails.
	OnError func(ctx context.Context, err error) error
}
