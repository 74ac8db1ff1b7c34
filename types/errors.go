package types

import "errors"

// Sentinel errors for the stencil library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Input errors - detected by the coordinator before any shape-dependent collective.
var (
	// ErrMalformedShape is returned when H <= 0, Wd <= 0, or H*Wd overflows MaxElements.
	ErrMalformedShape = errors.New("malformed image shape")

	// ErrSizeMismatch is returned when the payload length does not equal 2+H*Wd.
	ErrSizeMismatch = errors.New("input size does not match declared shape")

	// ErrRejected is returned on non-coordinator ranks when the coordinator's
	// broadcast verdict rejects the input.
	ErrRejected = errors.New("input rejected by coordinator")
)

// Engine errors - returned by Engine construction and runs.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCommunicatorRequired is returned when the communicator is nil.
	ErrCommunicatorRequired = errors.New("communicator is required")

	// ErrRunInProgress is returned when Run is called while another run is active.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrOutputMismatch is returned by the finalize phase when the gathered
	// output does not hold exactly H*Wd elements.
	ErrOutputMismatch = errors.New("gathered output size mismatch")
)

// Communication errors - returned by Communicator and Transport implementations.
var (
	// ErrCollectiveFailure is returned when a communication primitive fails or
	// a worker diverges in collective order. Always fatal for the run.
	ErrCollectiveFailure = errors.New("collective operation failed")

	// ErrInvalidLayout is returned when counts/displacements are inconsistent
	// with the world size or the send buffer.
	ErrInvalidLayout = errors.New("invalid scatter/gather layout")

	// ErrInvalidRank is returned when a rank argument is outside [0, Size).
	ErrInvalidRank = errors.New("invalid rank")

	// ErrPayloadTooLarge is returned when an encoded envelope exceeds the
	// transport's maximum payload.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrChecksumMismatch is returned when a received payload fails its checksum.
	ErrChecksumMismatch = errors.New("payload checksum mismatch")

	// ErrTransportClosed is returned by operations on a closed transport.
	ErrTransportClosed = errors.New("transport closed")
)
