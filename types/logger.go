package types

// Logger defines methods for structured logging.
//
// Every method takes a message followed by alternating key-value pairs,
// matching log/slog and zap.SugaredLogger. Engines log with "rank" and
// "phase" keys so interleaved output from many ranks stays readable.
type Logger interface {
	// Debug logs per-collective and per-phase detail.
	Debug(msg string, keysAndValues ...any)

	// Info logs run-level events.
	Info(msg string, keysAndValues ...any)

	// Warn logs conditions that do not fail a run.
	Warn(msg string, keysAndValues ...any)

	// Error logs run failures. Only the coordinator reports user-visible failures.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message and terminates the process (os.Exit(1)).
	// Test and no-op loggers do not exit.
	Fatal(msg string, keysAndValues ...any)
}
