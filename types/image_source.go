package types

import "context"

// ImageSource provides the flat encoded input of a run.
//
// The encoding is [H, Wd, p0 ... p(H*Wd-1)], row-major. Implementations can
// read from any backend:
//   - Static: fixed pixels for tests and embedding
//   - Random: deterministic synthetic images for load runs
//   - Custom: decoders for real image formats
type ImageSource interface {
	// Load returns the encoded input.
	//
	// Implementations should:
	//   - Return a slice the caller may keep and mutate
	//   - Handle context cancellation gracefully
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []int: Encoded input
	//   - error: Load error (nil on success)
	Load(ctx context.Context) ([]int, error)
}
