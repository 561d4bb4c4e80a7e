package types

import "context"

// Hooks defines callbacks for bootstrap lifecycle events.
//
// All hooks are optional. They are invoked synchronously from the
// bootstrap goroutine between collective calls, so implementations must
// complete quickly; a slow hook delays every peer rank blocked in the
// next rendezvous. Hook errors are logged and do not fail
// initialization.
//
// Example:
//
//	hooks := &groupmesh.Hooks{
//	    OnGroupCreated: func(ctx context.Context, entry groupmesh.Entry) error {
//	        log.Printf("joined %s as local rank %d/%d", entry.Name, entry.LocalRank, entry.Size())
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnGroupCreated is called after this rank's handle for a group has
	// been constructed and registered.
	OnGroupCreated func(ctx context.Context, entry Entry) error

	// OnModeInitialized is called after every group of one parallel mode
	// has been constructed. groups is the number of groups this rank
	// joined for the mode.
	OnModeInitialized func(ctx context.Context, mode ParallelMode, groups int) error

	// OnError is called when bootstrap is about to fail with err. The
	// failure is fatal regardless of the hook's return value.
	OnError func(ctx context.Context, err error) error
}
