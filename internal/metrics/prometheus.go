package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/fractal/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a PrometheusCollector that is never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	renderDuration   *prometheus.HistogramVec
	workUnits        prometheus.Gauge
	pixels           prometheus.Gauge
	stateTransitions *prometheus.CounterVec
	unitsCompleted   *prometheus.CounterVec
	rowsCompleted    *prometheus.CounterVec
	unitDuration     prometheus.Histogram
	collectorAppends prometheus.Counter
	collectorPixels  prometheus.Counter
	kvLatency        *prometheus.HistogramVec
	progressFailures *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "fractal" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "fractal"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of the parallel render phase by thread count.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}, []string{"threads"})

		p.workUnits = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "render",
			Name:      "work_units",
			Help:      "Number of work units in the current task list.",
		})

		p.pixels = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "render",
			Name:      "pixels",
			Help:      "Number of pixels collected by the last render.",
		})

		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "state_transitions_total",
			Help:      "Total worker loop state transitions by target state.",
		}, []string{"to"})

		p.unitsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "units_completed_total",
			Help:      "Total work units completed by worker.",
		}, []string{"worker"})

		p.rowsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "rows_completed_total",
			Help:      "Total image rows completed by worker.",
		}, []string{"worker"})

		p.unitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "unit_duration_seconds",
			Help:      "Time spent executing a single work unit.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		})

		p.collectorAppends = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "collector",
			Name:      "lock_acquisitions_total",
			Help:      "Total lock acquisitions on the shared pixel collector.",
		})

		p.collectorPixels = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "collector",
			Name:      "pixels_total",
			Help:      "Total pixels appended to the shared pixel collector.",
		})

		p.kvLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "progress",
			Name:      "kv_operation_seconds",
			Help:      "Latency of progress KV operations in seconds by operation.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"op"})

		p.progressFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "progress",
			Name:      "failures_total",
			Help:      "Total failed progress writes by operation.",
		}, []string{"op"})

		p.reg.MustRegister(p.renderDuration)
		p.reg.MustRegister(p.workUnits)
		p.reg.MustRegister(p.pixels)
		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.unitsCompleted)
		p.reg.MustRegister(p.rowsCompleted)
		p.reg.MustRegister(p.unitDuration)
		p.reg.MustRegister(p.collectorAppends)
		p.reg.MustRegister(p.collectorPixels)
		p.reg.MustRegister(p.kvLatency)
		p.reg.MustRegister(p.progressFailures)
	})
}

// RenderMetrics implementation

// RecordRenderDuration observes the parallel phase duration.
func (p *PrometheusCollector) RecordRenderDuration(duration float64, threads int) {
	p.ensureRegistered()
	p.renderDuration.WithLabelValues(strconv.Itoa(threads)).Observe(duration)
}

// RecordWorkUnits sets the work unit gauge.
func (p *PrometheusCollector) RecordWorkUnits(count int) {
	p.ensureRegistered()
	p.workUnits.Set(float64(count))
}

// RecordPixels sets the collected pixel gauge.
func (p *PrometheusCollector) RecordPixels(count int) {
	p.ensureRegistered()
	p.pixels.Set(float64(count))
}

// WorkerMetrics implementation

// RecordWorkerStateTransition counts a transition by target state.
//
// The worker index is deliberately not a label on this series; per-worker
// series are kept to the unit counters.
func (p *PrometheusCollector) RecordWorkerStateTransition(_ int, _ types.WorkerState, to types.WorkerState) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(to.String()).Inc()
}

// RecordUnitCompleted counts a finished unit and its rows, and observes its duration.
func (p *PrometheusCollector) RecordUnitCompleted(worker int, rows int, duration float64) {
	p.ensureRegistered()
	label := strconv.Itoa(worker)
	p.unitsCompleted.WithLabelValues(label).Inc()
	p.rowsCompleted.WithLabelValues(label).Add(float64(rows))
	p.unitDuration.Observe(duration)
}

// RecordCollectorAppend counts one lock acquisition carrying the given pixels.
func (p *PrometheusCollector) RecordCollectorAppend(pixels int) {
	p.ensureRegistered()
	p.collectorAppends.Inc()
	p.collectorPixels.Add(float64(pixels))
}

// ProgressMetrics implementation

// RecordKVOperationDuration observes a progress KV operation latency.
func (p *PrometheusCollector) RecordKVOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.kvLatency.WithLabelValues(operation).Observe(duration)
}

// RecordProgressFailure counts a failed progress write.
func (p *PrometheusCollector) RecordProgressFailure(operation string) {
	p.ensureRegistered()
	p.progressFailures.WithLabelValues(operation).Inc()
}
