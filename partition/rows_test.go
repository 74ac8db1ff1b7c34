package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/stencil/types"
)

func TestRows(t *testing.T) {
	t.Run("distributes rows evenly", func(t *testing.T) {
		blocks := Rows(9, 3)

		require.Equal(t, []types.RowBlock{
			{Rank: 0, Count: 3, Offset: 0},
			{Rank: 1, Count: 3, Offset: 3},
			{Rank: 2, Count: 3, Offset: 6},
		}, blocks)
	})

	t.Run("gives the remainder to the lowest ranks", func(t *testing.T) {
		blocks := Rows(10, 4)

		require.Equal(t, []types.RowBlock{
			{Rank: 0, Count: 3, Offset: 0},
			{Rank: 1, Count: 3, Offset: 3},
			{Rank: 2, Count: 2, Offset: 6},
			{Rank: 3, Count: 2, Offset: 8},
		}, blocks)
	})

	t.Run("single worker owns everything", func(t *testing.T) {
		require.Equal(t, []types.RowBlock{{Rank: 0, Count: 7, Offset: 0}}, Rows(7, 1))
	})

	t.Run("more workers than rows leaves trailing workers empty", func(t *testing.T) {
		blocks := Rows(2, 4)

		require.Equal(t, 1, blocks[0].Count)
		require.Equal(t, 1, blocks[1].Count)
		require.Equal(t, 0, blocks[2].Count)
		require.Equal(t, 0, blocks[3].Count)
		require.Equal(t, 2, blocks[3].Offset)
	})

	t.Run("returns nil for no workers", func(t *testing.T) {
		require.Nil(t, Rows(5, 0))
		require.Nil(t, Rows(5, -1))
	})
}

func TestRows_Invariants(t *testing.T) {
	for height := 1; height <= 40; height++ {
		for workers := 1; workers <= height+3; workers++ {
			blocks := Rows(height, workers)
			require.Len(t, blocks, workers)

			sum, lo, hi := 0, height, 0
			next := 0
			for i, b := range blocks {
				require.Equal(t, i, b.Rank)
				require.Equal(t, next, b.Offset, "H=%d W=%d rank=%d", height, workers, i)
				next = b.End()
				sum += b.Count
				lo = min(lo, b.Count)
				hi = max(hi, b.Count)
			}

			require.Equal(t, height, sum, "H=%d W=%d", height, workers)
			require.LessOrEqual(t, hi-lo, 1, "H=%d W=%d", height, workers)
		}
	}
}

func TestRows_Deterministic(t *testing.T) {
	require.Equal(t, Rows(1013, 7), Rows(1013, 7))
}
