package strategy

import (
	"fmt"

	"github.com/arloliu/fractal/types"
)

// Band implements static band partitioning of image rows.
type Band struct{}

var _ types.PartitionStrategy = (*Band)(nil)

// NewBand creates a new band strategy.
//
// The image height is divided into one contiguous band per worker, and each
// band is sliced into chunks of ceil(height/threads/granularity) rows, the
// quotient taken before truncating to whole bands. Assignment is
// static: granularity changes the number of units, not who computes a row.
//
// Example:
//
//	units, err := strategy.NewBand().Partition(1080, 4, 2)
func NewBand() *Band {
	return &Band{}
}

// Partition builds the task list.
//
// The algorithm:
//  1. band = height / threads; the last band also takes height % threads rows
//  2. chunk = ceil(height / threads / granularity), at least 1
//  3. Walk each band in chunk steps; the last chunk of a band is stretched to
//     the band end (the image bottom for the last worker)
//
// When chunk >= band (granularity 1) every band is a single unit. Boundaries
// between workers are always exact multiples of band.
//
// Parameters:
//   - height: Image height in rows (must be >= threads)
//   - threads: Number of workers (must be positive)
//   - granularity: Slices per band (must be positive)
//
// Returns:
//   - []*types.WorkUnit: Units in creation order, indexed from 0
//   - error: ErrInvalidPartition wrapped with the offending parameter
func (b *Band) Partition(height, threads, granularity int) ([]*types.WorkUnit, error) {
	switch {
	case height <= 0:
		return nil, fmt.Errorf("%w: height must be positive, got %d", types.ErrInvalidPartition, height)
	case threads <= 0:
		return nil, fmt.Errorf("%w: threads must be positive, got %d", types.ErrInvalidPartition, threads)
	case granularity <= 0:
		return nil, fmt.Errorf("%w: granularity must be positive, got %d", types.ErrInvalidPartition, granularity)
	case threads > height:
		return nil, fmt.Errorf("%w: %d threads exceed image height %d", types.ErrInvalidPartition, threads, height)
	}

	band := height / threads
	chunk := chunkRows(height, threads, granularity)

	units := make([]*types.WorkUnit, 0, threads*min(granularity, band))
	start := 0
	for worker := range threads {
		bandEnd := (worker + 1) * band
		if worker == threads-1 {
			bandEnd = height
		}

		for offset := 0; offset < band; offset += chunk {
			end := start + chunk
			if offset+chunk >= band {
				end = bandEnd
			}

			units = append(units, types.NewWorkUnit(len(units), worker, start, end))
			start = end
		}
	}

	return units, nil
}

// UnitsOf returns the units owned by worker, in creation order.
//
// Parameters:
//   - units: Task list produced by a PartitionStrategy
//   - worker: Worker index
//
// Returns:
//   - []*types.WorkUnit: Owned units sharing pointers with the task list
func UnitsOf(units []*types.WorkUnit, worker int) []*types.WorkUnit {
	var owned []*types.WorkUnit
	for _, u := range units {
		if u.Worker == worker {
			owned = append(owned, u)
		}
	}

	return owned
}

// chunkRows returns ceil(height / threads / granularity) over the exact quotient.
// It differs from ceil(band/granularity) when height is not a multiple of threads,
// e.g. 1080 rows, 7 threads, granularity 2 gives 78 rather than 77.
func chunkRows(height, threads, granularity int) int {
	if granularity >= height {
		return 1
	}
	div := threads * granularity

	return (height + div - 1) / div
}
