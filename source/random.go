package source

import (
	"context"
	"fmt"
	rand "math/rand/v2"

	"github.com/arloliu/stencil/types"
)

// MaxPixel is the largest value a Random source produces.
const MaxPixel = 255

// cancelCheckRows is how many rows Random generates between context checks.
const cancelCheckRows = 256

// Random implements an image source producing deterministic pseudo-random
// pixels in [0, MaxPixel].
//
// The same shape and seed always produce the same image, on every platform.
type Random struct {
	shape types.Shape
	seed  uint64
}

var _ types.ImageSource = (*Random)(nil)

// NewRandom creates a random image source.
//
// Parameters:
//   - shape: Image shape
//   - seed: Generator seed
//
// Returns:
//   - *Random: Source producing the same image on every Load
func NewRandom(shape types.Shape, seed uint64) *Random {
	return &Random{shape: shape, seed: seed}
}

// Load generates the encoded input.
//
// Returns:
//   - []int: [H, Wd, pixels...]
//   - error: ErrMalformedShape for non-positive or oversized shapes, or the
//     context error when cancelled
func (r *Random) Load(ctx context.Context) ([]int, error) {
	h, w := r.shape.Height, r.shape.Width
	if h <= 0 || w <= 0 || h > types.MaxElements/w {
		return nil, fmt.Errorf("%w: %s", types.ErrMalformedShape, r.shape)
	}

	rng := rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic pixels

	out := make([]int, types.HeaderLen, r.shape.InputLen())
	out[0], out[1] = h, w
	for i := range h {
		if i%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for range w {
			out = append(out, rng.IntN(MaxPixel+1))
		}
	}

	return out, nil
}
