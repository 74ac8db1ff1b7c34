package types

// Phase represents the lifecycle phase of a single engine run.
//
// Every rank walks the same progression:
//
//	PhaseIdle → PhaseValidate → PhasePrepare → PhaseRun → PhaseFinalize → PhaseIdle
//
// Any phase may move to PhaseFailed; a failed run returns to PhaseIdle when the
// next run starts.
type Phase int

const (
	// PhaseIdle indicates no run is in progress.
	PhaseIdle Phase = iota

	// PhaseValidate indicates the coordinator is checking the input and
	// broadcasting its verdict.
	PhaseValidate

	// PhasePrepare indicates the shape is being broadcast and the
	// partition and halo plan computed.
	PhasePrepare

	// PhaseRun indicates scatter, local stencil and gather are in progress.
	PhaseRun

	// PhaseFinalize indicates the coordinator is checking the gathered output.
	PhaseFinalize

	// PhaseFailed indicates the run ended with an error.
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseValidate:
		return "Validate"
	case PhasePrepare:
		return "Prepare"
	case PhaseRun:
		return "Run"
	case PhaseFinalize:
		return "Finalize"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
