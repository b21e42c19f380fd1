package worker

import "github.com/arloliu/fractal/types"

// Queue is a worker's view of the shared task list.
//
// It keeps the owned units in creation order, built once, so finding the next
// unit does not rescan the whole list. Because only the owner flips a unit's
// flag, a unit found finished stays finished and the cursor never moves back.
type Queue struct {
	worker int
	units  []*types.WorkUnit
	cursor int
}

// NewQueue collects the units of tasks owned by worker.
func NewQueue(tasks []*types.WorkUnit, worker int) *Queue {
	q := &Queue{worker: worker}
	for _, u := range tasks {
		if u.Worker == worker {
			q.units = append(q.units, u)
		}
	}

	return q
}

// Len returns the number of owned units, finished or not.
func (q *Queue) Len() int {
	return len(q.units)
}

// Next returns the first unfinished owned unit, or nil when none remain.
func (q *Queue) Next() *types.WorkUnit {
	for q.cursor < len(q.units) {
		u := q.units[q.cursor]
		if !u.Finished() {
			return u
		}
		q.cursor++
	}

	return nil
}
