package comm

import (
	rand "math/rand/v2"
	"time"
)

// retryMultiplier is the growth factor between consecutive send retries.
const retryMultiplier = 1.6

// jitterBackoff returns the delay before the next send retry using
// decorrelated jitter bounded by capDur.
//
// Behavior:
//   - If prev <= 0, start from base
//   - Multiplier < 1.0 falls back to 1.0
//   - Cap below base returns cap
func jitterBackoff(prev, base time.Duration, mult float64, capDur time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		base = 10 * time.Millisecond
	}
	if mult < 1.0 {
		mult = 1.0
	}
	if capDur > 0 && capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}

	spread := time.Duration(float64(prev)*mult) - base
	if spread <= 0 {
		spread = base
	}

	var jitter int64
	if rng != nil {
		jitter = rng.Int64N(int64(spread))
	} else {
		jitter = rand.Int64N(int64(spread)) //nolint:gosec // non-crypto backoff jitter
	}

	next := base + time.Duration(jitter)
	if capDur > 0 && next > capDur {
		return capDur
	}

	return next
}

// newRetryRNG returns a deterministic RNG for a non-zero seed and nil
// otherwise, in which case the package-level source is used.
//
//nolint:gosec
func newRetryRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	s1 := uint64(seed)
	s2 := s1 ^ 0x9e3779b97f4a7c15

	return rand.New(rand.NewPCG(s1, s2))
}
