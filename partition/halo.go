package partition

import "github.com/arloliu/stencil/types"

// Halo computes the halo plan of every block.
//
// A block has a top halo row iff it does not start at row 0, and a bottom halo
// row iff it does not end at the last row. Empty blocks carry no halo and
// empty windows.
//
// Parameters:
//   - blocks: Partition returned by Rows
//   - height: Total number of rows
//   - width: Number of columns
//
// Returns:
//   - []types.HaloPlan: One plan per block, same order
func Halo(blocks []types.RowBlock, height, width int) []types.HaloPlan {
	plans := make([]types.HaloPlan, len(blocks))
	for i, b := range blocks {
		plans[i] = haloFor(b, height, width)
	}

	return plans
}

func haloFor(b types.RowBlock, height, width int) types.HaloPlan {
	plan := types.HaloPlan{
		Rank:         b.Rank,
		Rows:         b.Count,
		GatherCount:  b.Count * width,
		GatherOffset: b.Offset * width,
	}
	if b.Count == 0 {
		plan.ScatterOffset = b.Offset * width

		return plan
	}

	plan.Top = b.Offset > 0
	plan.Bottom = b.End() < height
	plan.ExtendedRows = b.Count + plan.TopRows() + plan.BottomRows()
	plan.ScatterCount = plan.ExtendedRows * width
	plan.ScatterOffset = (b.Offset - plan.TopRows()) * width

	return plan
}
