package partition

import "github.com/arloliu/stencil/types"

// Rows splits height rows across workers.
//
// The algorithm:
//  1. base = height / workers, extra = height % workers
//  2. worker i gets base+1 rows if i < extra, base otherwise
//  3. offsets are the prefix sum of counts
//
// When workers > height the trailing workers receive zero rows.
//
// Parameters:
//   - height: Total number of rows (>= 0)
//   - workers: Number of workers (>= 1)
//
// Returns:
//   - []types.RowBlock: One block per worker in rank order (nil if workers <= 0)
func Rows(height, workers int) []types.RowBlock {
	if workers <= 0 || height < 0 {
		return nil
	}

	base := height / workers
	extra := height % workers

	blocks := make([]types.RowBlock, workers)
	offset := 0
	for i := range workers {
		count := base
		if i < extra {
			count++
		}
		blocks[i] = types.RowBlock{Rank: i, Count: count, Offset: offset}
		offset += count
	}

	return blocks
}
