package source

import (
	"context"
	"sync"

	"github.com/arloliu/stencil/types"
)

// Static implements an image source with fixed pixels.
type Static struct {
	mu     sync.RWMutex
	shape  types.Shape
	pixels []int
}

var _ types.ImageSource = (*Static)(nil)

// NewStatic creates a new static image source.
//
// The pixels are not validated against the shape here; the engine's
// coordinator does that, so a Static source can also carry malformed input.
//
// Parameters:
//   - shape: Declared image shape
//   - pixels: Row-major pixels (copied)
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic(types.Shape{Height: 3, Width: 3}, []int{1, 2, 3, 4, 5, 6, 7, 8, 9})
//	input, _ := src.Load(ctx)
//	out, err := stencil.RunLocal(ctx, &cfg, input)
func NewStatic(shape types.Shape, pixels []int) *Static {
	s := &Static{}
	s.Update(shape, pixels)

	return s
}

// Load returns the encoded input.
//
// Returns:
//   - []int: [H, Wd, pixels...], a fresh copy on every call
//   - error: Always nil (never fails)
func (s *Static) Load(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, 0, types.HeaderLen+len(s.pixels))
	out = append(out, s.shape.Height, s.shape.Width)
	out = append(out, s.pixels...)

	return out, nil
}

// Update replaces the image.
//
// Parameters:
//   - shape: New declared shape
//   - pixels: New pixels (copied)
func (s *Static) Update(shape types.Shape, pixels []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shape = shape
	s.pixels = make([]int, len(pixels))
	copy(s.pixels, pixels)
}
