package types

import "context"

// ProgressRecorder stores the work unit audit trail of a render outside the process.
//
// RecordPlan is called once by the coordinator after partitioning and before
// any worker starts. RecordUnit is called by the owning worker right after
// a unit is marked finished; implementations must be safe for concurrent use.
//
// Failures are reported to the caller but never abort the render.
type ProgressRecorder interface {
	// RecordPlan stores the full task list with every unit unfinished.
	RecordPlan(ctx context.Context, units []UnitRecord) error

	// RecordUnit stores the finished state of one unit.
	RecordUnit(ctx context.Context, unit UnitRecord) error
}
