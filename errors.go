package stencil

import "github.com/arloliu/stencil/types"

// Sentinel errors, re-exported from the types package so callers can test
// with errors.Is without importing it.
var (
	ErrMalformedShape       = types.ErrMalformedShape
	ErrSizeMismatch         = types.ErrSizeMismatch
	ErrRejected             = types.ErrRejected
	ErrInvalidConfig        = types.ErrInvalidConfig
	ErrCommunicatorRequired = types.ErrCommunicatorRequired
	ErrRunInProgress        = types.ErrRunInProgress
	ErrOutputMismatch       = types.ErrOutputMismatch
	ErrCollectiveFailure    = types.ErrCollectiveFailure
	ErrInvalidLayout        = types.ErrInvalidLayout
	ErrInvalidRank          = types.ErrInvalidRank
	ErrPayloadTooLarge      = types.ErrPayloadTooLarge
	ErrChecksumMismatch     = types.ErrChecksumMismatch
	ErrTransportClosed      = types.ErrTransportClosed
)
