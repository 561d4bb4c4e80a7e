package hooks

import (
	"context"

	"github.com/groupmesh/groupmesh/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.Entry) error             = (*NopHooks)(nil).OnGroupCreated
	_ func(context.Context, types.ParallelMode, int) error = (*NopHooks)(nil).OnModeInitialized
	_ func(context.Context, error) error                   = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnGroupCreated:    h.OnGroupCreated,
		OnModeInitialized: h.OnModeInitialized,
		OnError:           h.OnError,
	}
}

// OnGroupCreated is a no-op implementation.
func (h *NopHooks) OnGroupCreated(ctx context.Context, entry types.Entry) error {
	return nil
}

// OnModeInitialized is a no-op implementation.
func (h *NopHooks) OnModeInitialized(ctx context.Context, mode types.ParallelMode, groups int) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
