// Package collector provides the shared pixel collector of a render.
package collector

import (
	"fmt"
	"sync"

	"github.com/arloliu/fractal/types"
)

// Mode selects how workers hand pixels to the collector.
type Mode string

const (
	// ModePixel acquires the lock once per pixel.
	ModePixel Mode = "pixel"

	// ModeUnit buffers a whole work unit on the worker and merges it under one lock.
	ModeUnit Mode = "unit"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePixel || m == ModeUnit
}

// Collector is an unordered, mutex-guarded pixel container shared by all workers.
//
// Appends may come from any goroutine. Pixels must only be read after every
// writer has returned.
type Collector struct {
	mu      sync.Mutex
	pixels  []types.Pixel
	metrics types.WorkerMetrics
}

// New creates a collector with room for capacity pixels.
//
// Parameters:
//   - capacity: Expected pixel count (width × height)
//   - metrics: Receives one RecordCollectorAppend per lock acquisition
func New(capacity int, metrics types.WorkerMetrics) *Collector {
	return &Collector{
		pixels:  make([]types.Pixel, 0, capacity),
		metrics: metrics,
	}
}

// Append adds a single pixel under the lock.
func (c *Collector) Append(p types.Pixel) {
	c.mu.Lock()
	c.pixels = append(c.pixels, p)
	c.mu.Unlock()

	c.metrics.RecordCollectorAppend(1)
}

// AppendBatch adds all pixels under a single lock acquisition.
func (c *Collector) AppendBatch(ps []types.Pixel) {
	if len(ps) == 0 {
		return
	}

	c.mu.Lock()
	c.pixels = append(c.pixels, ps...)
	c.mu.Unlock()

	c.metrics.RecordCollectorAppend(len(ps))
}

// Len returns the number of collected pixels.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pixels)
}

// Pixels returns the collected pixels in insertion order.
//
// The returned slice is the collector's backing storage; callers own it once
// all workers have joined.
func (c *Collector) Pixels() []types.Pixel {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pixels
}

// Verify checks that the collector holds exactly one pixel for every
// coordinate of a width×height grid.
//
// Returns:
//   - error: ErrIncompleteRender describing the first problem found
func (c *Collector) Verify(width, height int) error {
	pixels := c.Pixels()

	if want := width * height; len(pixels) != want {
		return fmt.Errorf("%w: collected %d pixels, want %d", types.ErrIncompleteRender, len(pixels), want)
	}

	seen := make([]bool, width*height)
	for _, p := range pixels {
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			return fmt.Errorf("%w: pixel (%d,%d) outside %dx%d grid", types.ErrIncompleteRender, p.X, p.Y, width, height)
		}

		idx := p.Y*width + p.X
		if seen[idx] {
			return fmt.Errorf("%w: duplicate pixel (%d,%d)", types.ErrIncompleteRender, p.X, p.Y)
		}
		seen[idx] = true
	}

	return nil
}

// Sink is where a worker delivers the pixels of one unit.
//
// A Sink is owned by a single worker and is not safe for concurrent use;
// the collector behind it is.
type Sink interface {
	// Put delivers one pixel.
	Put(p types.Pixel)

	// Flush ends the current unit.
	Flush()
}

// NewSink returns a worker-private sink feeding c according to mode.
//
// Parameters:
//   - c: Shared collector
//   - mode: ModePixel forwards each pixel; ModeUnit buffers until Flush
//   - unitHint: Expected pixels per unit, used to size the buffer
func NewSink(c *Collector, mode Mode, unitHint int) Sink {
	if mode == ModePixel {
		return pixelSink{c: c}
	}

	return &unitSink{c: c, buf: make([]types.Pixel, 0, unitHint)}
}

type pixelSink struct {
	c *Collector
}

func (s pixelSink) Put(p types.Pixel) { s.c.Append(p) }

func (s pixelSink) Flush() {}

type unitSink struct {
	c   *Collector
	buf []types.Pixel
}

func (s *unitSink) Put(p types.Pixel) { s.buf = append(s.buf, p) }

func (s *unitSink) Flush() {
	s.c.AppendBatch(s.buf)
	// The collector copied the batch, so the buffer can be reused.
	s.buf = s.buf[:0]
}
