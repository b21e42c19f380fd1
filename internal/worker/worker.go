// Package worker runs the per-worker render loop.
//
// Each worker cycles Scanning → Executing → MarkingDone over the units it owns
// and ends in Idle when none are left. Workers never touch units owned by
// another worker, so the shared task list needs no lock; only the collector
// behind the sink is synchronized.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/fractal/internal/collector"
	"github.com/arloliu/fractal/internal/escape"
	"github.com/arloliu/fractal/internal/hooks"
	"github.com/arloliu/fractal/types"
)

// Stats summarizes what one worker did during a render.
type Stats struct {
	Worker   int           `json:"worker"`
	Units    int           `json:"units"`
	Rows     int           `json:"rows"`
	Pixels   int           `json:"pixels"`
	Duration time.Duration `json:"duration"`
}

// Config holds the collaborators of a worker.
type Config struct {
	// ID is the worker index; only units with a matching Worker field are executed.
	ID int

	// Tasks is the shared task list.
	Tasks []*types.WorkUnit

	// Width is the image width; every unit row is computed across the full width.
	Width int

	Evaluator escape.Evaluator
	Sink      collector.Sink

	Logger   types.Logger
	Metrics  types.WorkerMetrics
	Hooks    types.Hooks            // nil callbacks are treated as no-ops
	Recorder types.ProgressRecorder // optional
}

// Worker executes the units it owns.
type Worker struct {
	cfg   Config
	queue *Queue
	state types.WorkerState
}

// New creates a worker in the Scanning state.
//
// Returns:
//   - *Worker: Worker ready to Run
//   - error: If the configuration misses a required collaborator
func New(cfg Config) (*Worker, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("worker %d: sink is required", cfg.ID)
	}
	if cfg.Logger == nil || cfg.Metrics == nil {
		return nil, fmt.Errorf("worker %d: logger and metrics are required", cfg.ID)
	}
	if cfg.Width <= 0 {
		return nil, fmt.Errorf("worker %d: width must be positive, got %d", cfg.ID, cfg.Width)
	}

	cfg.Hooks = hooks.Fill(&cfg.Hooks)

	return &Worker{
		cfg:   cfg,
		queue: NewQueue(cfg.Tasks, cfg.ID),
		state: types.WorkerScanning,
	}, nil
}

// State returns the current loop state. Only meaningful from the worker's goroutine
// or after Run returned.
func (w *Worker) State() types.WorkerState {
	return w.state
}

// Run executes every owned unit and returns when none remain.
//
// A unit, once started, always runs to completion: ctx is passed to hooks and
// the progress recorder but does not interrupt pixel computation.
//
// Returns:
//   - Stats: Units, rows and pixels completed by this worker
func (w *Worker) Run(ctx context.Context) Stats {
	stats := Stats{Worker: w.cfg.ID}
	started := time.Now()

	w.cfg.Logger.Debug("worker started", "worker", w.cfg.ID, "owned_units", w.queue.Len())

	for {
		unit := w.queue.Next()
		if unit == nil {
			w.transition(ctx, types.WorkerIdle)
			break
		}

		w.transition(ctx, types.WorkerExecuting)
		unitStart := time.Now()
		stats.Pixels += w.execute(unit)

		w.transition(ctx, types.WorkerMarkingDone)
		w.complete(ctx, unit, time.Since(unitStart))
		stats.Units++
		stats.Rows += unit.Rows()

		w.transition(ctx, types.WorkerScanning)
	}

	stats.Duration = time.Since(started)
	w.cfg.Logger.Debug("worker idle",
		"worker", w.cfg.ID,
		"units", stats.Units,
		"rows", stats.Rows,
		"duration", stats.Duration,
	)

	return stats
}

// execute computes every pixel of the unit and hands it to the sink.
func (w *Worker) execute(unit *types.WorkUnit) int {
	count := 0
	for y := unit.RowStart; y < unit.RowEnd; y++ {
		for x := 0; x < w.cfg.Width; x++ {
			w.cfg.Sink.Put(w.cfg.Evaluator.Pixel(x, y))
			count++
		}
	}
	w.cfg.Sink.Flush()

	return count
}

// complete flips the unit's flag and reports it.
func (w *Worker) complete(ctx context.Context, unit *types.WorkUnit, elapsed time.Duration) {
	if !unit.MarkFinished() {
		// Only the owner marks a unit, so this means the queue handed it out twice.
		w.cfg.Logger.Error("work unit already finished", "worker", w.cfg.ID, "unit", unit.Index)
		return
	}

	w.cfg.Metrics.RecordUnitCompleted(w.cfg.ID, unit.Rows(), elapsed.Seconds())

	record := unit.Record()
	if w.cfg.Recorder != nil {
		if err := w.cfg.Recorder.RecordUnit(ctx, record); err != nil {
			w.reportError(ctx, fmt.Errorf("record unit %d: %w", unit.Index, err))
		}
	}

	if err := w.cfg.Hooks.OnUnitCompleted(ctx, record); err != nil {
		w.reportError(ctx, fmt.Errorf("OnUnitCompleted hook for unit %d: %w", unit.Index, err))
	}
}

func (w *Worker) transition(ctx context.Context, to types.WorkerState) {
	from := w.state
	w.state = to

	w.cfg.Metrics.RecordWorkerStateTransition(w.cfg.ID, from, to)
	if err := w.cfg.Hooks.OnWorkerStateChanged(ctx, w.cfg.ID, from, to); err != nil {
		w.reportError(ctx, fmt.Errorf("OnWorkerStateChanged hook: %w", err))
	}
}

func (w *Worker) reportError(ctx context.Context, err error) {
	w.cfg.Logger.Warn("worker side effect failed", "worker", w.cfg.ID, "error", err)

	if hookErr := w.cfg.Hooks.OnError(ctx, err); hookErr != nil {
		w.cfg.Logger.Warn("OnError hook failed", "worker", w.cfg.ID, "error", hookErr)
	}
}
