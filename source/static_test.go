package source

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/stencil/types"
)

func TestStatic_Load(t *testing.T) {
	t.Run("encodes shape header", func(t *testing.T) {
		src := NewStatic(types.Shape{Height: 2, Width: 3}, []int{1, 2, 3, 4, 5, 6})

		input, err := src.Load(context.Background())

		require.NoError(t, err)
		require.Equal(t, []int{2, 3, 1, 2, 3, 4, 5, 6}, input)
	})

	t.Run("keeps malformed input as given", func(t *testing.T) {
		src := NewStatic(types.Shape{Height: 2, Width: 2}, []int{1, 2, 3})

		input, err := src.Load(context.Background())

		require.NoError(t, err)
		require.Equal(t, []int{2, 2, 1, 2, 3}, input)
	})

	t.Run("returns a copy", func(t *testing.T) {
		src := NewStatic(types.Shape{Height: 1, Width: 2}, []int{7, 8})

		first, err := src.Load(context.Background())
		require.NoError(t, err)
		first[2] = 99

		second, err := src.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 7, 8}, second)
	})

	t.Run("copies constructor input", func(t *testing.T) {
		pixels := []int{4, 5}
		src := NewStatic(types.Shape{Height: 1, Width: 2}, pixels)
		pixels[0] = 0

		input, err := src.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 4, 5}, input)
	})
}

func TestStatic_Update(t *testing.T) {
	src := NewStatic(types.Shape{Height: 1, Width: 1}, []int{3})
	src.Update(types.Shape{Height: 2, Width: 1}, []int{5, 6})

	input, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{2, 1, 5, 6}, input)
}

func TestStatic_ConcurrentAccess(t *testing.T) {
	src := NewStatic(types.Shape{Height: 1, Width: 1}, []int{0})

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			src.Update(types.Shape{Height: 1, Width: 1}, []int{i})
		}()
		go func() {
			defer wg.Done()
			input, err := src.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, input, 3)
		}()
	}
	wg.Wait()
}
