package logger

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/arloliu/stencil/types"
)

// Entry is one message captured by a TestLogger.
type Entry struct {
	Level         string
	Msg           string
	KeysAndValues []any
}

// TestLogger implements types.Logger using testing.T for output and keeps
// every entry so tests can assert on what was logged.
//
// Safe for concurrent use by multiple ranks.
type TestLogger struct {
	t *testing.T

	mu      sync.Mutex
	entries []Entry
}

// Compile-time assertion that TestLogger implements Logger.
var _ types.Logger = (*TestLogger)(nil)

// NewTest creates a new test logger that writes to testing.T.
//
// Parameters:
//   - t: The testing.T instance to write logs to
//
// Returns:
//   - *TestLogger: A new logger instance that uses t.Logf()
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    logger := NewTest(t)
//	    logger.Info("test started", "id", 123)
//	}
func NewTest(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

// Debug logs a debug-level message with optional key-value pairs.
func (l *TestLogger) Debug(msg string, keysAndValues ...any) {
	l.log("DEBUG", msg, keysAndValues)
}

// Info logs an info-level message with optional key-value pairs.
func (l *TestLogger) Info(msg string, keysAndValues ...any) {
	l.log("INFO", msg, keysAndValues)
}

// Warn logs a warning-level message with optional key-value pairs.
func (l *TestLogger) Warn(msg string, keysAndValues ...any) {
	l.log("WARN", msg, keysAndValues)
}

// Error logs an error-level message with optional key-value pairs.
func (l *TestLogger) Error(msg string, keysAndValues ...any) {
	l.log("ERROR", msg, keysAndValues)
}

// Fatal logs a fatal-level message and fails the test.
func (l *TestLogger) Fatal(msg string, keysAndValues ...any) {
	l.log("FATAL", msg, keysAndValues)
	l.t.FailNow()
}

// Entries returns a copy of the captured entries at level, or all entries
// when level is empty.
func (l *TestLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

// Contains reports whether a message containing substr was logged at level.
func (l *TestLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries(level) {
		if strings.Contains(e.Msg, substr) {
			return true
		}
	}

	return false
}

func (l *TestLogger) log(level, msg string, keysAndValues []any) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, KeysAndValues: keysAndValues})
	l.mu.Unlock()

	l.t.Logf("%s: %s %s", level, msg, formatKeyValues(keysAndValues))
}

// formatKeyValues formats key-value pairs for logging.
func formatKeyValues(keysAndValues []any) string {
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v ", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing> ", keysAndValues[i])
		}
	}

	return b.String()
}
