package stencil

import "github.com/arloliu/stencil/types"

// Re-export types from the types package.
//
// Internal packages depend on `types` rather than on the root package, which
// avoids import cycles while still offering `stencil.Shape`,
// `stencil.Logger`, etc. to users.
type (
	Shape    = types.Shape
	RowBlock = types.RowBlock
	HaloPlan = types.HaloPlan
	Phase    = types.Phase
	Envelope = types.Envelope
)

// Re-export interfaces from the types package for convenience.
type (
	Communicator     = types.Communicator
	Request          = types.Request
	Transport        = types.Transport
	ImageSource      = types.ImageSource
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export Phase constants from the types package.
const (
	PhaseIdle     = types.PhaseIdle
	PhaseValidate = types.PhaseValidate
	PhasePrepare  = types.PhasePrepare
	PhaseRun      = types.PhaseRun
	PhaseFinalize = types.PhaseFinalize
	PhaseFailed   = types.PhaseFailed
)

// Re-export layout constants.
const (
	// Coordinator is the rank owning the full input and output.
	Coordinator = types.Coordinator

	// HeaderLen is the number of leading shape elements in an encoded input.
	HeaderLen = types.HeaderLen

	// MaxElements is the largest accepted H*Wd.
	MaxElements = types.MaxElements
)
