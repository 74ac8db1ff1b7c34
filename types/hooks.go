package types

import "context"

// Hooks defines callbacks for engine lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so they never stall a collective. Hook errors are logged and otherwise ignored.
//
// Example:
//
//	hooks := &stencil.Hooks{
//	    OnPhaseChanged: func(ctx context.Context, from, to stencil.Phase) error {
//	        log.Printf("phase %s -> %s", from, to)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnPhaseChanged is called on every phase transition of a run.
	OnPhaseChanged func(ctx context.Context, from, to Phase) error

	// OnError is called when a run fails.
	OnError func(ctx context.Context, err error) error
}
