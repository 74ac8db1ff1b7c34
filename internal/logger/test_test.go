package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTestLogger_RecordsEntries(t *testing.T) {
	logger := NewTest(t)

	logger.Info("run started", "rank", 0)
	logger.Error("input rejected", "error", "bad shape")
	logger.Warn("odd", "single")

	require.Len(t, logger.Entries(""), 3)
	require.Len(t, logger.Entries("ERROR"), 1)
	require.True(t, logger.Contains("ERROR", "rejected"))
	require.False(t, logger.Contains("INFO", "rejected"))
	require.Equal(t, []any{"rank", 0}, logger.Entries("INFO")[0].KeysAndValues)
}

func TestTestLogger_Concurrent(t *testing.T) {
	logger := NewTest(t)

	var wg sync.WaitGroup
	for rank := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Debug("collective done", "rank", rank)
		}()
	}
	wg.Wait()

	require.Len(t, logger.Entries("DEBUG"), 8)
}

func TestFormatKeyValues(t *testing.T) {
	require.Equal(t, "", formatKeyValues(nil))
	require.Equal(t, "a=1 b=<missing> ", formatKeyValues([]any{"a", 1, "b"}))
}
