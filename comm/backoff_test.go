package comm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJitterBackoff_Bounds(t *testing.T) {
	base := 20 * time.Millisecond
	capDur := 200 * time.Millisecond
	rng := newRetryRNG(42)

	prev := time.Duration(0)
	for range 20 {
		next := jitterBackoff(prev, base, retryMultiplier, capDur, rng)
		require.GreaterOrEqual(t, next, base)
		require.LessOrEqual(t, next, capDur)
		prev = next
	}
}

func TestJitterBackoff_FirstDelayIsBase(t *testing.T) {
	require.Equal(t, 30*time.Millisecond, jitterBackoff(0, 30*time.Millisecond, retryMultiplier, time.Second, nil))
}

func TestJitterBackoff_CapBelowBase(t *testing.T) {
	base := 200 * time.Millisecond
	capDur := 100 * time.Millisecond

	require.Equal(t, capDur, jitterBackoff(0, base, retryMultiplier, capDur, nil))
	require.Equal(t, capDur, jitterBackoff(base, base, retryMultiplier, capDur, nil))
}

func TestJitterBackoff_DefaultsInvalidInputs(t *testing.T) {
	next := jitterBackoff(0, 0, 0.5, 0, nil)
	require.Equal(t, 10*time.Millisecond, next)

	next = jitterBackoff(next, 0, 0.5, 0, newRetryRNG(7))
	require.GreaterOrEqual(t, next, 10*time.Millisecond)
	require.Less(t, next, 20*time.Millisecond)
}

func TestNewRetryRNG_Deterministic(t *testing.T) {
	require.Nil(t, newRetryRNG(0))

	a, b := newRetryRNG(5), newRetryRNG(5)
	for range 5 {
		require.Equal(t, a.Int64(), b.Int64())
	}
}
