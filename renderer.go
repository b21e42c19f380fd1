package fractal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/fractal/internal/collector"
	"github.com/arloliu/fractal/internal/escape"
	"github.com/arloliu/fractal/internal/hooks"
	"github.com/arloliu/fractal/internal/logger"
	"github.com/arloliu/fractal/internal/metrics"
	"github.com/arloliu/fractal/internal/worker"
	"github.com/arloliu/fractal/ppm"
	"github.com/arloliu/fractal/strategy"
	"github.com/arloliu/fractal/types"
)

// WorkerStats summarizes what one worker did during a render.
type WorkerStats = worker.Stats

// Renderer computes the escape-time image described by its Config with a
// fixed pool of worker goroutines.
//
// The image rows are split into one band per worker and every band into
// Granularity work units. Workers compute only the units they own, push
// pixels into a shared mutex-guarded collector and mark units finished.
// After all workers joined, the pixels are verified and sorted row-major.
//
// Thread Safety:
//   - Render calls are serialized; a Renderer can be reused
//   - Stats may be read concurrently with a running render
//
// Example:
//
//	cfg := fractal.DefaultConfig()
//	cfg.Threads = 8
//	r, err := fractal.NewRenderer(&cfg)
//	if err != nil {
//	    return err
//	}
//	res, err := r.Render(ctx)
//	if err != nil {
//	    return err
//	}
//	_, err = res.WriteFile(cfg.Output)
type Renderer struct {
	cfg Config

	strategy PartitionStrategy
	hooks    Hooks
	metrics  MetricsCollector
	logger   Logger
	recorder ProgressRecorder

	stats *xsync.Map[int, WorkerStats]
	mu    sync.Mutex
}

// Result is a finished render.
type Result struct {
	Width  int
	Height int

	// Pixels holds exactly Width*Height pixels in row-major order.
	Pixels []Pixel

	// Units are the final records of the task list, in plan order.
	Units []UnitRecord

	// Workers holds per-worker statistics ordered by worker index.
	Workers []WorkerStats

	// Elapsed is the wall-clock duration of the parallel phase.
	Elapsed time.Duration
}

// NewRenderer creates a new Renderer with the provided configuration.
//
// Missing configuration values are filled with defaults before validation.
//
// Parameters:
//   - cfg: Render configuration (defaults are applied in place)
//   - opts: Optional dependencies (strategy, hooks, metrics, logger, progress recorder)
//
// Returns:
//   - *Renderer: Initialized renderer
//   - error: ErrInvalidConfig-wrapped validation error
func NewRenderer(cfg *Config, opts ...Option) (*Renderer, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &rendererOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	partitioner := options.strategy
	if partitioner == nil {
		partitioner = strategy.NewBand()
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	return &Renderer{
		cfg:      *cfg,
		strategy: partitioner,
		hooks:    hooks.Fill(options.hooks),
		metrics:  metricsCollector,
		logger:   loggerInstance,
		recorder: options.recorder,
		stats:    xsync.NewMap[int, WorkerStats](),
	}, nil
}

// Config returns a copy of the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Stats returns the statistics of one worker of the current or last render.
func (r *Renderer) Stats(worker int) (WorkerStats, bool) {
	return r.stats.Load(worker)
}

// Render computes the image.
//
// The task list is built and recorded, one goroutine per worker is started
// and all of them are joined before the pixels are checked and sorted. A
// unit that has started always runs to completion; ctx is only checked
// before the workers start and passed on to hooks and the progress recorder.
// Progress recording failures are logged and never fail the render.
//
// Parameters:
//   - ctx: Context for hooks, progress recording and early cancellation
//
// Returns:
//   - *Result: Sorted pixels, unit records, worker statistics and timing
//   - error: ErrInvalidPartition or ErrIncompleteRender wrapped errors, or ctx.Err()
func (r *Renderer) Render(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := r.cfg

	units, err := r.strategy.Partition(cfg.Height, cfg.Threads, cfg.Granularity)
	if err != nil {
		return nil, fmt.Errorf("failed to partition rows: %w", err)
	}
	r.metrics.RecordWorkUnits(len(units))

	r.logger.Info("render planned",
		"width", cfg.Width,
		"height", cfg.Height,
		"threads", cfg.Threads,
		"granularity", cfg.Granularity,
		"units", len(units),
		"collect_mode", cfg.CollectMode,
	)

	if r.recorder != nil {
		if err := r.recorder.RecordPlan(ctx, types.Records(units)); err != nil {
			r.logger.Warn("failed to record render plan", "error", err)
			if hookErr := r.hooks.OnError(ctx, err); hookErr != nil {
				r.logger.Error("OnError hook failed", "error", hookErr)
			}
		}
	}

	pixels := collector.New(cfg.Width*cfg.Height, r.metrics)
	evaluator := escape.NewEvaluator(cfg.Width, cfg.Height, cfg.MaxIterations, cfg.Viewport)
	mode := collector.Mode(cfg.CollectMode)

	workers := make([]*worker.Worker, cfg.Threads)
	for id := range cfg.Threads {
		w, err := worker.New(worker.Config{
			ID:        id,
			Tasks:     units,
			Width:     cfg.Width,
			Evaluator: evaluator,
			Sink:      collector.NewSink(pixels, mode, cfg.Width*(cfg.Height/cfg.Threads/cfg.Granularity+1)),
			Logger:    r.logger,
			Metrics:   r.metrics,
			Hooks:     r.hooks,
			Recorder:  r.recorder,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create worker: %w", err)
		}
		workers[id] = w
	}

	r.stats.Clear()

	start := time.Now()

	var wg sync.WaitGroup
	for id, w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.stats.Store(id, w.Run(ctx))
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)

	if err := checkFinished(units); err != nil {
		return nil, err
	}
	if err := pixels.Verify(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	sorted := pixels.Pixels()
	ppm.Sort(sorted)

	r.metrics.RecordRenderDuration(elapsed.Seconds(), cfg.Threads)
	r.metrics.RecordPixels(len(sorted))

	r.logger.Info("render finished",
		"elapsed_ms", elapsed.Milliseconds(),
		"pixels", len(sorted),
		"units", len(units),
	)

	return &Result{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Pixels:  sorted,
		Units:   types.Records(units),
		Workers: r.collectStats(),
		Elapsed: elapsed,
	}, nil
}

func (r *Renderer) collectStats() []WorkerStats {
	out := make([]WorkerStats, 0, r.stats.Size())
	r.stats.Range(func(_ int, s WorkerStats) bool {
		out = append(out, s)
		return true
	})
	slices.SortFunc(out, func(a, b WorkerStats) int { return a.Worker - b.Worker })

	return out
}

func checkFinished(units []*types.WorkUnit) error {
	var errs []error
	for _, u := range units {
		if !u.Finished() {
			errs = append(errs, fmt.Errorf("%s not finished", u))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrIncompleteRender, errors.Join(errs...))
}

// Encode writes the image as a P3 raster and returns its digest.
func (res *Result) Encode(w io.Writer) (ppm.Digest, error) {
	return ppm.Encode(w, res.Width, res.Height, res.Pixels)
}

// WriteFile writes the image to path, replacing any existing file.
func (res *Result) WriteFile(path string) (ppm.Digest, error) {
	return ppm.WriteFile(path, res.Width, res.Height, res.Pixels)
}

// Digest returns the digest of the encoded image without writing it anywhere.
func (res *Result) Digest() (ppm.Digest, error) {
	return res.Encode(io.Discard)
}

// ElapsedMillis returns the parallel phase duration in whole milliseconds.
func (res *Result) ElapsedMillis() int64 {
	return res.Elapsed.Milliseconds()
}
