package types

// PartitionStrategy divides the image height into an ordered task list.
//
// Strategy implementations should:
//   - Be deterministic (same input → same output)
//   - Cover every row in [0, height) by exactly one unit
//   - Give each unit an owning worker in [0, threads)
//   - Keep each worker's units contiguous and gapless in creation order
type PartitionStrategy interface {
	// Partition builds the task list for a render.
	//
	// Parameters:
	//   - height: Image height in rows
	//   - threads: Number of workers
	//   - granularity: How finely each worker's band is sliced
	//
	// Returns:
	//   - []*WorkUnit: Units in creation order, all unfinished
	//   - error: ErrInvalidPartition for unusable parameters
	Partition(height, threads, granularity int) ([]*WorkUnit, error)
}
