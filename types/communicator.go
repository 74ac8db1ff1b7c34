package types

import "context"

// Coordinator is the rank that owns the full image before distribution and
// the full output after gathering.
const Coordinator = 0

// Communicator is the message-passing capability shared by every rank of a
// fixed-size world.
//
// Collective operations (Bcast, Scatterv, Gatherv) must be entered by every
// rank in the same order; a rank returns once its part of the collective is
// complete. Point-to-point operations (Isend, Recv) pair one sender with one
// receiver and are matched by (from, tag).
//
// Implementations are not required to be safe for concurrent collective calls
// from multiple goroutines on the same rank.
type Communicator interface {
	// Rank returns this worker's index in [0, Size).
	Rank() int

	// Size returns the number of workers in the world.
	Size() int

	// Bcast distributes data from root to every rank.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//   - root: Rank that owns the data
	//   - data: Payload (read on root only)
	//
	// Returns:
	//   - []int: Private copy of root's payload on every rank
	//   - error: ErrCollectiveFailure on communication failure
	Bcast(ctx context.Context, root int, data []int) ([]int, error)

	// Scatterv sends send[displs[r] : displs[r]+counts[r]] from root to rank r.
	//
	// counts and displs are significant on root only; windows may overlap.
	//
	// Returns:
	//   - []int: This rank's window (exactly counts[rank] elements)
	//   - error: ErrInvalidLayout for bad counts/displs, ErrCollectiveFailure otherwise
	Scatterv(ctx context.Context, root int, send []int, counts, displs []int) ([]int, error)

	// Gatherv collects every rank's send buffer at root, placing rank r's
	// elements at displs[r]. counts and displs are significant on root only.
	//
	// Returns:
	//   - []int: Assembled buffer on root, nil elsewhere
	//   - error: ErrInvalidLayout for bad counts/displs, ErrCollectiveFailure otherwise
	Gatherv(ctx context.Context, root int, send []int, counts, displs []int) ([]int, error)

	// Isend starts a non-blocking send of data to rank to with the given tag.
	//
	// The payload is copied before Isend returns, so the caller may reuse it.
	// Completion is observed through the returned Request.
	Isend(ctx context.Context, to int, tag int, data []int) Request

	// Recv blocks until a message with tag from rank from arrives.
	Recv(ctx context.Context, from int, tag int) ([]int, error)
}

// Request tracks a non-blocking send.
type Request interface {
	// Wait blocks until the send completes and returns its error.
	Wait() error
}
