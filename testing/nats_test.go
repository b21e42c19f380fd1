package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.NotNil(t, nc)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(1*time.Second))
	require.True(t, ns.JetStreamEnabled())
}

func TestStartEmbeddedNATS_Parallel(t *testing.T) {
	t.Parallel()

	for range 3 {
		t.Run("parallel", func(t *testing.T) {
			t.Parallel()

			_, nc := StartEmbeddedNATS(t)
			require.True(t, nc.IsConnected())
		})
	}
}

func TestCreateJetStreamKV(t *testing.T) {
	ctx := t.Context()
	_, nc := StartEmbeddedNATS(t)

	progress := CreateJetStreamKV(t, nc, "fractal-progress")
	audit := CreateJetStreamKV(t, nc, "fractal-audit")

	_, err := progress.Put(ctx, "render.plan", []byte(`{"version":1}`))
	require.NoError(t, err)
	_, err = audit.Put(ctx, "render.plan", []byte(`{"version":2}`))
	require.NoError(t, err)

	entry, err := progress.Get(ctx, "render.plan")
	require.NoError(t, err)
	require.JSONEq(t, `{"version":1}`, string(entry.Value()))

	entry, err = audit.Get(ctx, "render.plan")
	require.NoError(t, err)
	require.JSONEq(t, `{"version":2}`, string(entry.Value()))
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	logger.Debug("debug", "unit", 1)
	logger.Info("info", "worker", 0)
	logger.Warn("warn")
	logger.Error("error", "err", "boom")
}

func TestFormatPairs(t *testing.T) {
	require.Empty(t, formatPairs(nil))
	require.Equal(t, " worker=2 rows=10", formatPairs([]any{"worker", 2, "rows", 10}))
	require.Equal(t, " unit=3 dangling", formatPairs([]any{"unit", 3, "dangling"}))
}
