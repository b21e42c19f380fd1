package types

import (
	"fmt"
	"sync/atomic"
)

// WorkUnit is a contiguous range of image rows assigned to one worker.
//
// Units are created once by a PartitionStrategy before any worker starts and
// live for the whole render as an audit record of progress. A unit is never
// reassigned; only its owning worker flips the completion flag, exactly once.
type WorkUnit struct {
	// Index is the position of the unit in creation order.
	Index int

	// Worker is the index of the owning worker, in [0, threads).
	Worker int

	// RowStart is the first row of the unit (inclusive).
	RowStart int

	// RowEnd is one past the last row of the unit (exclusive).
	RowEnd int

	finished atomic.Bool
}

// NewWorkUnit creates an unfinished unit.
func NewWorkUnit(index, worker, rowStart, rowEnd int) *WorkUnit {
	return &WorkUnit{
		Index:    index,
		Worker:   worker,
		RowStart: rowStart,
		RowEnd:   rowEnd,
	}
}

// Rows returns the number of rows covered by the unit.
func (u *WorkUnit) Rows() int {
	return u.RowEnd - u.RowStart
}

// Finished reports whether the owning worker has completed the unit.
func (u *WorkUnit) Finished() bool {
	return u.finished.Load()
}

// MarkFinished flips the completion flag.
//
// Returns:
//   - bool: true if this call flipped the flag, false if it was already set
func (u *WorkUnit) MarkFinished() bool {
	return u.finished.CompareAndSwap(false, true)
}

// Record returns a point-in-time snapshot of the unit.
func (u *WorkUnit) Record() UnitRecord {
	return UnitRecord{
		Index:    u.Index,
		Worker:   u.Worker,
		RowStart: u.RowStart,
		RowEnd:   u.RowEnd,
		Finished: u.Finished(),
	}
}

// String implements fmt.Stringer.
func (u *WorkUnit) String() string {
	return fmt.Sprintf("unit#%d[worker=%d rows=%d..%d]", u.Index, u.Worker, u.RowStart, u.RowEnd)
}

// UnitRecord is the serializable snapshot of a WorkUnit.
type UnitRecord struct {
	Index    int  `json:"index"`
	Worker   int  `json:"worker"`
	RowStart int  `json:"rowStart"`
	RowEnd   int  `json:"rowEnd"`
	Finished bool `json:"finished"`
}

// Records snapshots a task list in order.
func Records(units []*WorkUnit) []UnitRecord {
	out := make([]UnitRecord, len(units))
	for i, u := range units {
		out[i] = u.Record()
	}

	return out
}
