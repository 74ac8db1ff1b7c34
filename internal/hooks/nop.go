// Package hooks provides default implementations of types.Hooks.
package hooks

import (
	"context"

	"github.com/arloliu/stencil/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks in the engine.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.Phase, types.Phase) error = (*NopHooks)(nil).OnPhaseChanged
	_ func(context.Context, error) error                    = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnPhaseChanged: h.OnPhaseChanged,
		OnError:        h.OnError,
	}
}

// WithDefaults returns a copy of h with nil callbacks replaced by no-ops.
// A nil h yields NewNop().
func WithDefaults(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnPhaseChanged != nil {
		out.OnPhaseChanged = h.OnPhaseChanged
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnPhaseChanged is a no-op implementation.
func (h *NopHooks) OnPhaseChanged(_ context.Context, _, _ types.Phase) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
