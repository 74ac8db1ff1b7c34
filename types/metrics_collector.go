package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called from every rank's goroutine concurrently and must be
// thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	EngineMetrics
	CommMetrics
}

// EngineMetrics defines metrics for engine runs.
type EngineMetrics interface {
	// RecordPhaseTransition records a phase transition of a run.
	//
	// Parameters:
	//   - rank: Rank performing the transition
	//   - from: Phase being left
	//   - to: Phase being entered
	//   - duration: Time spent in the phase being left, in seconds
	RecordPhaseTransition(rank int, from, to Phase, duration float64)

	// RecordRun records the outcome of a run on one rank.
	//
	// Parameters:
	//   - rank: Rank reporting the run
	//   - success: true if the run completed without error
	//   - duration: Total run time in seconds
	RecordRun(rank int, success bool, duration float64)

	// RecordRows sets the number of rows owned by a rank in the last run (gauge metric).
	RecordRows(rank int, rows int)
}

// CommMetrics defines metrics for collective and point-to-point traffic.
type CommMetrics interface {
	// RecordCollective records one completed collective on one rank.
	//
	// Parameters:
	//   - op: Collective name ("bcast", "scatterv", "gatherv")
	//   - elements: Elements sent or received by this rank
	//   - duration: Time taken in seconds
	//   - success: false if the collective failed
	RecordCollective(op string, elements int, duration float64, success bool)

	// RecordSendRetry records a transport-level delivery retry.
	RecordSendRetry(reason string)
}
