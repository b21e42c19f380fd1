package types

// WorkerState represents the state of a render worker loop.
//
// States follow a fixed cycle while owned work remains:
//
//	WorkerScanning → WorkerExecuting → WorkerMarkingDone → WorkerScanning
//
// WorkerIdle is terminal: it is entered when a scan finds no unfinished
// unit owned by the worker, and the worker exits.
type WorkerState int

const (
	// WorkerScanning indicates the worker is looking for its next unfinished unit.
	WorkerScanning WorkerState = iota

	// WorkerExecuting indicates the worker is computing the pixels of a unit.
	WorkerExecuting

	// WorkerMarkingDone indicates the worker is flipping the unit's completion flag.
	WorkerMarkingDone

	// WorkerIdle indicates no owned work remains and the worker has exited.
	WorkerIdle
)

// String returns the string representation of the state.
func (s WorkerState) String() string {
	switch s {
	case WorkerScanning:
		return "Scanning"
	case WorkerExecuting:
		return "Executing"
	case WorkerMarkingDone:
		return "MarkingDone"
	case WorkerIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}
