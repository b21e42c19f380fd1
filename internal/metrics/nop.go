// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/fractal/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RenderMetrics implementation

// RecordRenderDuration discards the render duration metric.
func (n *NopMetrics) RecordRenderDuration(_ /* duration */ float64, _ /* threads */ int) {
	// No-op
}

// RecordWorkUnits discards the work unit count metric.
func (n *NopMetrics) RecordWorkUnits(_ /* count */ int) {
	// No-op
}

// RecordPixels discards the pixel count metric.
func (n *NopMetrics) RecordPixels(_ /* count */ int) {
	// No-op
}

// WorkerMetrics implementation

// RecordWorkerStateTransition discards the worker state transition metric.
func (n *NopMetrics) RecordWorkerStateTransition(_ /* worker */ int, _ /* from */, _ /* to */ types.WorkerState) {
	// No-op
}

// RecordUnitCompleted discards the unit completion metric.
func (n *NopMetrics) RecordUnitCompleted(_ /* worker */, _ /* rows */ int, _ /* duration */ float64) {
	// No-op
}

// RecordCollectorAppend discards the collector append metric.
func (n *NopMetrics) RecordCollectorAppend(_ /* pixels */ int) {
	// No-op
}

// ProgressMetrics implementation

// RecordKVOperationDuration discards the KV operation duration metric.
func (n *NopMetrics) RecordKVOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// RecordProgressFailure discards the progress failure metric.
func (n *NopMetrics) RecordProgressFailure(_ /* operation */ string) {
	// No-op
}
