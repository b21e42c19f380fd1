// Package hooks provides default render lifecycle hooks.
package hooks

import (
	"context"

	"github.com/arloliu/fractal/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, int, types.WorkerState, types.WorkerState) error = (*NopHooks)(nil).OnWorkerStateChanged
	_ func(context.Context, types.UnitRecord) error                          = (*NopHooks)(nil).OnUnitCompleted
	_ func(context.Context, error) error                                     = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
func NewNop() types.Hooks {
	h := &NopHooks{}

	return types.Hooks{
		OnWorkerStateChanged: h.OnWorkerStateChanged,
		OnUnitCompleted:      h.OnUnitCompleted,
		OnError:              h.OnError,
	}
}

// Fill returns a copy of hooks with every nil callback replaced by a no-op.
//
// Parameters:
//   - hooks: User hooks (may be nil)
//
// Returns:
//   - types.Hooks: Hooks safe to call without nil checks
func Fill(hooks *types.Hooks) types.Hooks {
	out := NewNop()
	if hooks == nil {
		return out
	}
	if hooks.OnWorkerStateChanged != nil {
		out.OnWorkerStateChanged = hooks.OnWorkerStateChanged
	}
	if hooks.OnUnitCompleted != nil {
		out.OnUnitCompleted = hooks.OnUnitCompleted
	}
	if hooks.OnError != nil {
		out.OnError = hooks.OnError
	}

	return out
}

// OnWorkerStateChanged is a no-op implementation.
func (h *NopHooks) OnWorkerStateChanged(_ context.Context, _ int, _, _ types.WorkerState) error {
	return nil
}

// OnUnitCompleted is a no-op implementation.
func (h *NopHooks) OnUnitCompleted(_ context.Context, _ types.UnitRecord) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
