package testing

import (
	"testing"

	"github.com/arloliu/stencil/internal/logger"
	"github.com/arloliu/stencil/types"
)

// NewTestLogger creates a logger that writes to the testing.T logger.
// This is useful for seeing per-rank log output during test runs.
func NewTestLogger(t *testing.T) types.Logger {
	return logger.NewTest(t)
}
