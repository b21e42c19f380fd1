package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/fractal/internal/kvutil"
	"github.com/arloliu/fractal/internal/natsutil"
	"github.com/arloliu/fractal/types"
)

const (
	// DefaultPrefix is the key prefix used when none is given.
	DefaultPrefix = "render"
	// DefaultTimeout bounds a single KV operation.
	DefaultTimeout = 5 * time.Second
)

// Plan describes one render published to the bucket.
type Plan struct {
	Version   int64     `json:"version"`
	Units     int       `json:"units"`
	Workers   int       `json:"workers"`
	StartedAt time.Time `json:"startedAt"`
}

// Entry is the stored form of a work unit.
type Entry struct {
	Version int64 `json:"version"`
	types.UnitRecord
}

// Recorder implements types.ProgressRecorder on top of a KV bucket.
//
// After the first connectivity failure the recorder turns degraded and
// rejects further writes without contacting the server, so a lost NATS
// connection costs one timeout instead of one per work unit.
type Recorder struct {
	kv       jetstream.KeyValue
	prefix   string
	unitKey  string // cached "prefix.unit."
	planKey  string // cached "prefix.plan"
	timeout  time.Duration
	logger   types.Logger
	metrics  types.ProgressMetrics
	mu       sync.Mutex
	version  int64
	degraded atomic.Bool
	lastErr  atomic.Pointer[error]
}

var _ types.ProgressRecorder = (*Recorder)(nil)

// New creates a recorder writing into kv.
//
// Parameters:
//   - kv: JetStream KV bucket for progress entries
//   - prefix: Key prefix (DefaultPrefix when empty)
//   - timeout: Per-operation timeout (DefaultTimeout when <= 0)
//   - logger: Logger for recorder events
//   - metrics: Metrics collector for KV latency and failures
//
// Returns:
//   - *Recorder: New recorder instance
func New(
	kv jetstream.KeyValue,
	prefix string,
	timeout time.Duration,
	logger types.Logger,
	metrics types.ProgressMetrics,
) *Recorder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Recorder{
		kv:      kv,
		prefix:  prefix,
		unitKey: prefix + ".unit.",
		planKey: prefix + ".plan",
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Open ensures the bucket exists on the connection and returns a recorder for it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - nc: Connected NATS client
//   - bucket: KV bucket name
//   - timeout: Per-operation timeout
//   - logger: Logger for recorder events
//   - metrics: Metrics collector for KV latency and failures
//
// Returns:
//   - *Recorder: Recorder bound to the bucket
//   - error: JetStream or bucket creation failure
func Open(
	ctx context.Context,
	nc *nats.Conn,
	bucket string,
	timeout time.Duration,
	logger types.Logger,
	metrics types.ProgressMetrics,
) (*Recorder, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "fractal render progress",
		History:     1,
	}, 3)
	if err != nil {
		return nil, err
	}

	return New(kv, DefaultPrefix, timeout, logger, metrics), nil
}

// Degraded reports whether the recorder stopped writing after a connectivity failure.
func (r *Recorder) Degraded() bool {
	return r.degraded.Load()
}

// RecordPlan clears the entries of the previous render and publishes the new plan.
//
// The plan version is one higher than the version found in the bucket, so
// watchers can tell consecutive renders apart.
//
// Parameters:
//   - ctx: Context for cancellation
//   - units: Unit records of the new render, in plan order
//
// Returns:
//   - error: Wrapped types.ErrRecordFailed on any KV failure
func (r *Recorder) RecordPlan(ctx context.Context, units []types.UnitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkDegraded(); err != nil {
		return err
	}

	prev, err := r.loadPlan(ctx)
	switch {
	case err == nil:
		r.version = prev.Version + 1
	case errors.Is(err, jetstream.ErrKeyNotFound):
		r.version = 1
	default:
		return r.fail("plan", err)
	}

	if err := r.cleanup(ctx); err != nil {
		return r.fail("cleanup", err)
	}

	workers := 0
	for _, u := range units {
		workers = max(workers, u.Worker+1)
		if err := r.put(ctx, "put", r.unitKey+fmt.Sprint(u.Index), Entry{Version: r.version, UnitRecord: u}); err != nil {
			return r.fail("put", err)
		}
	}

	plan := Plan{Version: r.version, Units: len(units), Workers: workers, StartedAt: time.Now().UTC()}
	if err := r.put(ctx, "plan", r.planKey, plan); err != nil {
		return r.fail("plan", err)
	}

	r.logger.Info("published render plan", "version", r.version, "units", len(units), "workers", workers)

	return nil
}

// RecordUnit publishes the completed state of one unit.
//
// Parameters:
//   - ctx: Context for cancellation
//   - unit: Record of the unit that just finished
//
// Returns:
//   - error: Wrapped types.ErrRecordFailed on any KV failure
func (r *Recorder) RecordUnit(ctx context.Context, unit types.UnitRecord) error {
	if err := r.checkDegraded(); err != nil {
		return err
	}

	r.mu.Lock()
	version := r.version
	r.mu.Unlock()

	if err := r.put(ctx, "put", r.unitKey+fmt.Sprint(unit.Index), Entry{Version: version, UnitRecord: unit}); err != nil {
		return r.fail("put", err)
	}

	return nil
}

// Plan returns the plan of the latest render stored in the bucket.
func (r *Recorder) Plan(ctx context.Context) (Plan, error) {
	plan, err := r.loadPlan(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", types.ErrRecordFailed, err)
	}

	return plan, nil
}

// Entries returns the stored unit entries ordered by unit index.
//
// Malformed entries are skipped.
func (r *Recorder) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := r.unitKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrRecordFailed, err)
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		kve, err := r.kv.Get(opCtx, key)
		cancel()
		if err != nil {
			r.logger.Debug("failed to read progress key", "key", key, "error", err)
			continue
		}

		var entry Entry
		if err := json.Unmarshal(kve.Value(), &entry); err != nil {
			r.logger.Debug("failed to unmarshal progress entry", "key", key, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	slices.SortFunc(entries, func(a, b Entry) int { return a.Index - b.Index })

	return entries, nil
}

func (r *Recorder) loadPlan(ctx context.Context) (Plan, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	entry, err := r.kv.Get(opCtx, r.planKey)
	r.metrics.RecordKVOperationDuration("get", time.Since(start).Seconds())
	if err != nil {
		return Plan{}, err
	}

	var plan Plan
	if err := json.Unmarshal(entry.Value(), &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to unmarshal plan: %w", err)
	}

	return plan, nil
}

// cleanup removes the unit entries left by a previous render.
func (r *Recorder) cleanup(ctx context.Context) error {
	keys, err := r.unitKeys(ctx)
	if err != nil {
		return err
	}

	deleted := 0
	for _, key := range keys {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		err := r.kv.Delete(opCtx, key)
		r.metrics.RecordKVOperationDuration("delete", time.Since(start).Seconds())
		cancel()
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		deleted++
	}

	if deleted > 0 {
		r.logger.Debug("cleaned up previous render", "deleted_count", deleted)
	}

	return nil
}

func (r *Recorder) unitKeys(ctx context.Context) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	keys, err := r.kv.Keys(opCtx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list KV keys: %w", err)
	}

	owned := keys[:0]
	for _, key := range keys {
		if strings.HasPrefix(key, r.unitKey) {
			owned = append(owned, key)
		}
	}

	return owned, nil
}

func (r *Recorder) put(ctx context.Context, op string, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	_, err = r.kv.Put(opCtx, key, data)
	r.metrics.RecordKVOperationDuration(op, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}

	return nil
}

func (r *Recorder) checkDegraded() error {
	if !r.degraded.Load() {
		return nil
	}

	if last := r.lastErr.Load(); last != nil {
		return fmt.Errorf("%w: progress store unreachable: %w", types.ErrRecordFailed, *last)
	}

	return fmt.Errorf("%w: progress store unreachable", types.ErrRecordFailed)
}

func (r *Recorder) fail(op string, err error) error {
	r.metrics.RecordProgressFailure(op)

	if natsutil.IsConnectivityError(err) {
		r.lastErr.Store(&err)
		if r.degraded.CompareAndSwap(false, true) {
			r.logger.Warn("progress store unreachable, disabling progress recording", "op", op, "error", err)
		}
	}

	return fmt.Errorf("%w: %s: %w", types.ErrRecordFailed, op, err)
}
