// Package strategy provides built-in partition strategies.
//
// A partition strategy turns the image height into an ordered task list of
// row-range work units, each owned by exactly one worker. The package ships
// a single strategy:
//
//   - Band: one contiguous band of rows per worker, sliced by a granularity
//     factor. Assignment is static; there is no work stealing.
//
// Custom strategies can be implemented by satisfying the types.PartitionStrategy
// interface and passed to the renderer with fractal.WithStrategy.
package strategy
