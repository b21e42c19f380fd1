package escape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fractal/types"
)

var referenceViewport = types.Viewport{MinReal: -2.5, MaxReal: 1.0, MinImag: -2.0, MaxImag: 2.0}

func TestMapper(t *testing.T) {
	m := Mapper{Width: 1920, Height: 1080, Viewport: referenceViewport}

	t.Run("real axis endpoints", func(t *testing.T) {
		require.InDelta(t, -2.5, m.Real(0), 1e-12)
		require.InDelta(t, 1.0, m.Real(1920), 1e-12)
		require.InDelta(t, -0.75, m.Real(960), 1e-12)
	})

	t.Run("imaginary axis endpoints", func(t *testing.T) {
		require.InDelta(t, -2.0, m.Imag(0), 1e-12)
		require.InDelta(t, 2.0, m.Imag(1080), 1e-12)
		require.InDelta(t, 0.0, m.Imag(540), 1e-12)
	})

	t.Run("point combines both axes", func(t *testing.T) {
		c := m.Point(1920, 0)
		require.InDelta(t, 1.0, real(c), 1e-12)
		require.InDelta(t, -2.0, imag(c), 1e-12)
	})
}

func TestIterate(t *testing.T) {
	t.Run("origin never escapes", func(t *testing.T) {
		require.Equal(t, 255, Iterate(0, 255))
		require.Equal(t, 1000, Iterate(0, 1000))
	})

	t.Run("far point escapes on the first step", func(t *testing.T) {
		// z1 = c·exp(0) + 0 = c, |c| > 2
		require.Equal(t, 1, Iterate(complex(3, 0), 255))
		require.Equal(t, 1, Iterate(complex(0, -2.5), 255))
	})

	t.Run("second step uses the exponential term", func(t *testing.T) {
		// c = 1.5: z1 = 1.5, z2 = 1.5·e^-1.5 + 2.25 ≈ 2.5847 > 2
		require.Equal(t, 2, Iterate(complex(1.5, 0), 255))
	})

	t.Run("zero cap performs no iteration", func(t *testing.T) {
		require.Equal(t, 0, Iterate(complex(5, 5), 0))
	})

	t.Run("boundary magnitude does not escape", func(t *testing.T) {
		// z1 = 2 exactly; escape needs |z| > 2, so the loop continues.
		require.Greater(t, Iterate(complex(2, 0), 255), 1)
	})
}

func TestColor(t *testing.T) {
	tests := []struct {
		n       int
		r, g, b int
	}{
		{0, 0, 0, 0},
		{1, 3, 15, 17},
		{255, 765, 3825, 4335},
		{256, 0, 0, 0},
		{300, 132, 660, 748},
	}

	for _, tt := range tests {
		r, g, b := Color(tt.n)
		require.Equal(t, [3]int{tt.r, tt.g, tt.b}, [3]int{r, g, b}, "n=%d", tt.n)
	}
}

func TestEvaluator_Pixel(t *testing.T) {
	// 4x4 grid over [-2, 2]²: pixel (2, 2) maps to the origin.
	e := NewEvaluator(4, 4, 255, types.Viewport{MinReal: -2, MaxReal: 2, MinImag: -2, MaxImag: 2})

	p := e.Pixel(2, 2)
	require.Equal(t, types.Pixel{X: 2, Y: 2, Red: 765, Green: 3825, Blue: 4335}, p)

	corner := e.Pixel(0, 0)
	require.Equal(t, 0, corner.X)
	require.Equal(t, 0, corner.Y)
	require.Equal(t, 3, corner.Red) // c = -2-2i escapes on the first step
}

func BenchmarkIterate(b *testing.B) {
	c := complex(-0.4, 0.6)
	for b.Loop() {
		_ = Iterate(c, 255)
	}
}
