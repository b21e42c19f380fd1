package fractal

// Option configures a Renderer with optional dependencies.
type Option func(*rendererOptions)

// rendererOptions holds optional Renderer configuration.
type rendererOptions struct {
	strategy PartitionStrategy
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	recorder ProgressRecorder
}

// WithStrategy sets the partition strategy used to build the task list.
//
// Parameters:
//   - strategy: PartitionStrategy implementation (default: strategy.NewBand())
//
// Returns:
//   - Option: Functional option for NewRenderer
func WithStrategy(strategy PartitionStrategy) Option {
	return func(o *rendererOptions) {
		o.strategy = strategy
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewRenderer
//
// Example:
//
//	hooks := &fractal.Hooks{
//	    OnUnitCompleted: func(ctx context.Context, unit fractal.UnitRecord) error {
//	        log.Printf("rows %d..%d done by worker %d", unit.RowStart, unit.RowEnd, unit.Worker)
//	        return nil
//	    },
//	}
//	r, err := fractal.NewRenderer(&cfg, fractal.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *rendererOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewRenderer
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "fractal")
//	r, err := fractal.NewRenderer(&cfg, fractal.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *rendererOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for NewRenderer
func WithLogger(logger Logger) Option {
	return func(o *rendererOptions) {
		o.logger = logger
	}
}

// WithProgressRecorder sets where the render plan and completed units are recorded.
//
// Parameters:
//   - recorder: ProgressRecorder implementation (e.g. a NATS KV recorder)
//
// Returns:
//   - Option: Functional option for NewRenderer
func WithProgressRecorder(recorder ProgressRecorder) Option {
	return func(o *rendererOptions) {
		o.recorder = recorder
	}
}
