// Package escape computes escape-time colors for points of the image grid.
//
// The orbit recurrence is z(0) = 0, z(n+1) = c·exp(−z(n)) + z(n)², which is not
// the canonical z²+c map. Iteration stops when |z| > Bailout or when the cap is
// reached. All functions here are pure and safe for concurrent use.
package escape

import (
	"math/cmplx"

	"github.com/arloliu/fractal/types"
)

// Bailout is the orbit magnitude above which a point is considered divergent.
const Bailout = 2.0

// Mapper maps pixel coordinates to points of the complex plane.
type Mapper struct {
	Width    int
	Height   int
	Viewport types.Viewport
}

// Real maps a column to the real axis. Column Width maps to MaxReal.
func (m Mapper) Real(x int) float64 {
	ratio := float64(x) / float64(m.Width)
	return m.Viewport.MinReal + (m.Viewport.MaxReal-m.Viewport.MinReal)*ratio
}

// Imag maps a row to the imaginary axis. Row Height maps to MaxImag.
func (m Mapper) Imag(y int) float64 {
	ratio := float64(y) / float64(m.Height)
	return m.Viewport.MinImag + (m.Viewport.MaxImag-m.Viewport.MinImag)*ratio
}

// Point maps a pixel to c = Real(x) + Imag(y)·i.
func (m Mapper) Point(x, y int) complex128 {
	return complex(m.Real(x), m.Imag(y))
}

// Iterate returns the escape time of c: the iteration count at which the
// orbit magnitude first exceeds Bailout, or maxIter if it never does.
func Iterate(c complex128, maxIter int) int {
	var z complex128

	n := 0
	for n < maxIter {
		z = c*cmplx.Exp(-z) + z*z
		n++

		if cmplx.Abs(z) > Bailout {
			break
		}
	}

	return n
}

// Color derives the RGB triplet of an escape time.
//
// Channels are (n mod 256) scaled by 3, 15 and 17 and are not clamped, so
// values above 255 are expected and produce the banded palette.
func Color(n int) (red, green, blue int) {
	v := n % 256
	return v * 3, v * 15, v * 17
}

// Evaluator computes finished pixels for one render configuration.
type Evaluator struct {
	Mapper
	MaxIter int
}

// NewEvaluator creates an evaluator for a width×height grid over viewport.
func NewEvaluator(width, height, maxIter int, viewport types.Viewport) Evaluator {
	return Evaluator{
		Mapper:  Mapper{Width: width, Height: height, Viewport: viewport},
		MaxIter: maxIter,
	}
}

// Pixel evaluates the pixel at column x, row y.
func (e Evaluator) Pixel(x, y int) types.Pixel {
	r, g, b := Color(Iterate(e.Point(x, y), e.MaxIter))

	return types.Pixel{X: x, Y: y, Red: r, Green: g, Blue: b}
}
