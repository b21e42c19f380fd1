// Package fractal renders an escape-time fractal image with a fixed pool of
// worker goroutines.
//
// The image rows are split into one contiguous band per worker, and each band
// into a configurable number of work units. Every worker computes only the
// units it owns, sends its pixels to a shared collector and marks each unit
// finished. Once all workers joined, the pixels are sorted row-major and can
// be written as a plain-text P3 raster.
//
// The iteration is z = c·exp(−z) + z², starting from z = 0, until |z| > 2 or
// the iteration cap is reached. Colors are derived from the iteration count
// and are deliberately not clamped to the 0-255 range.
//
// # Quick Start
//
//	cfg := fractal.DefaultConfig()
//	cfg.Threads = 8
//	cfg.Granularity = 16
//
//	r, err := fractal.NewRenderer(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := r.Render(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := res.WriteFile(cfg.Output); err != nil {
//	    log.Fatal(err)
//	}
//
// The output bytes do not depend on the thread count, granularity or
// collect mode.
//
// # Observability
//
// Hooks report worker state changes and completed units. A MetricsCollector
// (see internal/metrics for the Prometheus implementation) records render
// duration, unit throughput and collector lock traffic. A ProgressRecorder
// stores the task list and every completed unit, for example in a NATS
// JetStream KeyValue bucket:
//
//	rec, err := progress.Open(ctx, nc, "fractal-progress", 5*time.Second, logger, collector)
//	r, err := fractal.NewRenderer(&cfg,
//	    fractal.WithLogger(logger),
//	    fractal.WithMetrics(collector),
//	    fractal.WithProgressRecorder(rec),
//	)
//
// See the examples/ directory and cmd/fractal for complete programs.
package fractal
