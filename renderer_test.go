package fractal

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/fractal/internal/metrics"
	"github.com/arloliu/fractal/internal/progress"
	"github.com/arloliu/fractal/ppm"
	"github.com/arloliu/fractal/strategy"
	fractaltest "github.com/arloliu/fractal/testing"
)

type memoryRecorder struct {
	mu    sync.Mutex
	plan  []UnitRecord
	units []UnitRecord
	err   error
}

func (m *memoryRecorder) RecordPlan(_ context.Context, units []UnitRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plan = units

	return m.err
}

func (m *memoryRecorder) RecordUnit(_ context.Context, unit UnitRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = append(m.units, unit)

	return m.err
}

// halfStrategy covers only the top half of the image.
type halfStrategy struct{}

func (halfStrategy) Partition(height, threads, granularity int) ([]*WorkUnit, error) {
	return strategy.NewBand().Partition(height/2, threads, granularity)
}

type failingStrategy struct{}

func (failingStrategy) Partition(int, int, int) ([]*WorkUnit, error) {
	return nil, fmt.Errorf("%w: always", ErrInvalidPartition)
}

func render(t *testing.T, cfg Config, opts ...Option) *Result {
	t.Helper()

	r, err := NewRenderer(&cfg, opts...)
	require.NoError(t, err)

	res, err := r.Render(t.Context())
	require.NoError(t, err)

	return res
}

func TestNewRenderer(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewRenderer(nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Threads = cfg.Height + 1
		_, err := NewRenderer(&cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("without optional dependencies", func(t *testing.T) {
		cfg := Config{Width: 8, Height: 8, MaxIterations: 32, Threads: 2, Granularity: 1}
		r, err := NewRenderer(&cfg)
		require.NoError(t, err)

		require.NotNil(t, r.strategy)
		require.NotNil(t, r.metrics)
		require.NotNil(t, r.logger)
		require.NotNil(t, r.hooks.OnError)
		require.Nil(t, r.recorder)
		require.Equal(t, DefaultViewport(), r.Config().Viewport)
		require.Equal(t, "unit", r.Config().CollectMode)
	})

	t.Run("zero core parameters are rejected", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Config
		}{
			{"all zero", Config{}},
			{"zero width", Config{Width: 0, Height: 8, MaxIterations: 10, Threads: 1, Granularity: 1}},
			{"zero height", Config{Width: 8, Height: 0, MaxIterations: 10, Threads: 1, Granularity: 1}},
			{"zero threads", Config{Width: 8, Height: 8, MaxIterations: 10, Threads: 0, Granularity: 1}},
			{"negative threads", Config{Width: 8, Height: 8, MaxIterations: 10, Threads: -2, Granularity: 1}},
			{"zero granularity", Config{Width: 8, Height: 8, MaxIterations: 10, Threads: 1, Granularity: 0}},
			{"zero iterations", Config{Width: 8, Height: 8, MaxIterations: 0, Threads: 1, Granularity: 1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := tt.cfg
				r, err := NewRenderer(&cfg)
				require.ErrorIs(t, err, ErrInvalidConfig)
				require.Nil(t, r)
			})
		}
	})
}

func TestRender_Completeness(t *testing.T) {
	tests := []struct {
		threads     int
		granularity int
	}{
		{1, 1},
		{3, 1},
		{4, 5},
		{7, 100},
		{48, 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("T=%d/G=%d", tt.threads, tt.granularity), func(t *testing.T) {
			cfg := TestConfig()
			cfg.Threads = tt.threads
			cfg.Granularity = tt.granularity

			res := render(t, cfg)

			require.Len(t, res.Pixels, cfg.Width*cfg.Height)
			require.True(t, ppm.IsSorted(res.Pixels))
			for i, p := range res.Pixels {
				require.Equal(t, i%cfg.Width, p.X)
				require.Equal(t, i/cfg.Width, p.Y)
			}

			for _, u := range res.Units {
				require.True(t, u.Finished, "unit %d", u.Index)
			}

			require.Len(t, res.Workers, tt.threads)
			rows, pixels := 0, 0
			for i, s := range res.Workers {
				require.Equal(t, i, s.Worker)
				rows += s.Rows
				pixels += s.Pixels
			}
			require.Equal(t, cfg.Height, rows)
			require.Equal(t, cfg.Width*cfg.Height, pixels)
			require.GreaterOrEqual(t, res.ElapsedMillis(), int64(0))
		})
	}
}

func TestRender_DeterministicAcrossSchedules(t *testing.T) {
	base := TestConfig()
	reference, err := render(t, base).Digest()
	require.NoError(t, err)

	for _, mode := range []string{"pixel", "unit"} {
		for _, threads := range []int{1, 2, 5, 16} {
			for _, granularity := range []int{1, 3, 64} {
				t.Run(fmt.Sprintf("%s/T=%d/G=%d", mode, threads, granularity), func(t *testing.T) {
					cfg := base
					cfg.CollectMode = mode
					cfg.Threads = threads
					cfg.Granularity = granularity

					digest, err := render(t, cfg).Digest()
					require.NoError(t, err)
					require.Equal(t, reference, digest)
				})
			}
		}
	}
}

func TestRender_OriginPixel(t *testing.T) {
	cfg := Config{
		Width:         1,
		Height:        1,
		MaxIterations: 255,
		Threads:       1,
		Granularity:   1,
		Viewport:      Viewport{MinReal: 0, MaxReal: 1, MinImag: 0, MaxImag: 1},
	}

	res := render(t, cfg)
	require.Equal(t, []Pixel{{X: 0, Y: 0, Red: 765, Green: 3825, Blue: 4335}}, res.Pixels)

	var buf bytes.Buffer
	_, err := res.Encode(&buf)
	require.NoError(t, err)
	require.Equal(t, "P3\n1 1\n256\n765 3825 4335 \n", buf.String())
}

func TestRender_WriteFile(t *testing.T) {
	res := render(t, TestConfig())
	path := filepath.Join(t.TempDir(), "out.ppm")

	written, err := res.WriteFile(path)
	require.NoError(t, err)

	onDisk, err := ppm.DigestFile(path)
	require.NoError(t, err)
	require.Equal(t, written, onDisk)
}

func TestRender_Hooks(t *testing.T) {
	var completed, transitions atomic.Int32
	seen := sync.Map{}

	hooks := &Hooks{
		OnWorkerStateChanged: func(_ context.Context, _ int, _, _ WorkerState) error {
			transitions.Add(1)
			return nil
		},
		OnUnitCompleted: func(_ context.Context, unit UnitRecord) error {
			completed.Add(1)
			assert.True(t, unit.Finished)
			_, dup := seen.LoadOrStore(unit.Index, unit.Worker)
			assert.False(t, dup, "unit %d completed twice", unit.Index)

			return nil
		},
	}

	cfg := TestConfig()
	cfg.Threads = 4
	cfg.Granularity = 3
	res := render(t, cfg, WithHooks(hooks), WithLogger(fractaltest.NewTestLogger(t)))

	require.Equal(t, int32(len(res.Units)), completed.Load())
	// Executing, MarkingDone, Scanning per unit plus the final Idle per worker.
	require.Equal(t, int32(3*len(res.Units)+cfg.Threads), transitions.Load())
}

func TestRender_ProgressRecorder(t *testing.T) {
	t.Run("records plan and every unit", func(t *testing.T) {
		rec := &memoryRecorder{}
		cfg := TestConfig()
		cfg.Threads = 3
		cfg.Granularity = 2

		res := render(t, cfg, WithProgressRecorder(rec))

		require.Len(t, rec.plan, len(res.Units))
		for _, u := range rec.plan {
			require.False(t, u.Finished)
		}
		require.Len(t, rec.units, len(res.Units))
		for _, u := range rec.units {
			require.True(t, u.Finished)
		}
	})

	t.Run("failures do not fail the render", func(t *testing.T) {
		rec := &memoryRecorder{err: fmt.Errorf("%w: store down", ErrRecordFailed)}
		var reported atomic.Int32
		hooks := &Hooks{
			OnError: func(_ context.Context, err error) error {
				assert.ErrorIs(t, err, ErrRecordFailed)
				reported.Add(1)
				return nil
			},
		}

		cfg := TestConfig()
		cfg.Threads = 2
		res := render(t, cfg, WithProgressRecorder(rec), WithHooks(hooks))

		require.Len(t, res.Pixels, cfg.Width*cfg.Height)
		// plan plus one per unit
		require.Equal(t, int32(len(res.Units)+1), reported.Load())
	})

	t.Run("NATS KV", func(t *testing.T) {
		_, nc := fractaltest.StartEmbeddedNATS(t)
		logger := fractaltest.NewTestLogger(t)
		rec, err := progress.Open(t.Context(), nc, "fractal-progress", 0, logger, metrics.NewNop())
		require.NoError(t, err)

		cfg := TestConfig()
		cfg.Threads = 4
		cfg.Granularity = 2
		res := render(t, cfg, WithProgressRecorder(rec), WithLogger(logger))

		entries, err := rec.Entries(t.Context())
		require.NoError(t, err)
		require.Len(t, entries, len(res.Units))
		for i, e := range entries {
			require.Equal(t, res.Units[i], e.UnitRecord)
		}
	})
}

func TestRender_Errors(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		cfg := TestConfig()
		r, err := NewRenderer(&cfg)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err = r.Render(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("partition failure", func(t *testing.T) {
		cfg := TestConfig()
		r, err := NewRenderer(&cfg, WithStrategy(failingStrategy{}))
		require.NoError(t, err)

		_, err = r.Render(t.Context())
		require.ErrorIs(t, err, ErrInvalidPartition)
	})

	t.Run("uncovered rows", func(t *testing.T) {
		cfg := TestConfig()
		r, err := NewRenderer(&cfg, WithStrategy(halfStrategy{}))
		require.NoError(t, err)

		_, err = r.Render(t.Context())
		require.ErrorIs(t, err, ErrIncompleteRender)
	})
}

func TestRender_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "fractal")

	cfg := TestConfig()
	cfg.Threads = 2
	cfg.Granularity = 2
	res := render(t, cfg, WithMetrics(collector))

	count, err := testutil.GatherAndCount(reg, "fractal_render_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "fractal_render_work_units")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Len(t, res.Units, 4)
}

func TestRenderer_Reuse(t *testing.T) {
	cfg := TestConfig()
	cfg.Threads = 3
	r, err := NewRenderer(&cfg)
	require.NoError(t, err)

	first, err := r.Render(t.Context())
	require.NoError(t, err)
	second, err := r.Render(t.Context())
	require.NoError(t, err)

	d1, err := first.Digest()
	require.NoError(t, err)
	d2, err := second.Digest()
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	stats, ok := r.Stats(2)
	require.True(t, ok)
	require.Equal(t, 2, stats.Worker)
	require.Equal(t, stats, second.Workers[2])
}
