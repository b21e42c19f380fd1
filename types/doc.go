// Package types provides core type definitions and interfaces for the fractal renderer.
//
// This package contains shared types that are used across multiple packages in the
// module. By keeping these types in a separate package, we avoid import cycles
// between the root fractal package and its internal implementations.
//
// Key types:
//   - Pixel: One computed pixel (coordinates and color channels)
//   - WorkUnit: A contiguous range of image rows owned by one worker
//   - Viewport: Rectangle of the complex plane mapped onto the image
//   - WorkerState: Worker loop state
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
