package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking. Worker methods are called from
// every worker goroutine and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	RenderMetrics
	WorkerMetrics
	ProgressMetrics
}

// RenderMetrics defines metrics for whole-render operations.
type RenderMetrics interface {
	// RecordRenderDuration records the wall-clock time of the parallel phase.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	//   - threads: Number of workers used
	RecordRenderDuration(duration float64, threads int)

	// RecordWorkUnits sets the number of units in the current task list (gauge metric).
	RecordWorkUnits(count int)

	// RecordPixels sets the number of pixels collected by the last render (gauge metric).
	RecordPixels(count int)
}

// WorkerMetrics defines metrics for individual worker loops.
type WorkerMetrics interface {
	// RecordWorkerStateTransition records a worker loop state transition.
	RecordWorkerStateTransition(worker int, from, to WorkerState)

	// RecordUnitCompleted records a finished work unit.
	//
	// Parameters:
	//   - worker: Owning worker index
	//   - rows: Number of rows in the unit
	//   - duration: Time spent executing the unit in seconds
	RecordUnitCompleted(worker int, rows int, duration float64)

	// RecordCollectorAppend records one append into the shared collector.
	//
	// Parameters:
	//   - pixels: Number of pixels appended under a single lock acquisition
	RecordCollectorAppend(pixels int)
}

// ProgressMetrics defines metrics for the work unit audit trail.
type ProgressMetrics interface {
	// RecordKVOperationDuration records NATS KV operation latency.
	//
	// Parameters:
	//   - operation: Operation type ("plan", "unit", "reset")
	//   - duration: Time taken in seconds
	RecordKVOperationDuration(operation string, duration float64)

	// RecordProgressFailure records a failed progress write.
	RecordProgressFailure(operation string)
}
