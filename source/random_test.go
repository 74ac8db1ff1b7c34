package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/stencil/types"
)

func TestRandom_Load(t *testing.T) {
	shape := types.Shape{Height: 17, Width: 9}
	src := NewRandom(shape, 42)

	input, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, input, shape.InputLen())
	require.Equal(t, []int{17, 9}, input[:types.HeaderLen])

	for _, p := range input[types.HeaderLen:] {
		require.GreaterOrEqual(t, p, 0)
		require.LessOrEqual(t, p, MaxPixel)
	}
}

func TestRandom_Deterministic(t *testing.T) {
	shape := types.Shape{Height: 8, Width: 8}

	a, err := NewRandom(shape, 7).Load(context.Background())
	require.NoError(t, err)
	b, err := NewRandom(shape, 7).Load(context.Background())
	require.NoError(t, err)
	c, err := NewRandom(shape, 8).Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestRandom_InvalidShape(t *testing.T) {
	for _, shape := range []types.Shape{
		{Height: 0, Width: 3},
		{Height: 3, Width: -1},
		{Height: types.MaxElements, Width: 2},
	} {
		_, err := NewRandom(shape, 1).Load(context.Background())
		require.ErrorIs(t, err, types.ErrMalformedShape, shape.String())
	}
}

func TestRandom_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRandom(types.Shape{Height: 4, Width: 4}, 1).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
