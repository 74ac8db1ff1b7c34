package partition

import "github.com/arloliu/stencil/types"

// Plan is the complete distribution plan of one run.
type Plan struct {
	Shape  types.Shape
	Blocks []types.RowBlock
	Halos  []types.HaloPlan
}

// NewPlan partitions shape across workers and computes every halo plan.
//
// Parameters:
//   - shape: Image dimensions
//   - workers: World size (>= 1)
//
// Returns:
//   - Plan: Blocks and halos indexed by rank
//
// Example:
//
//	plan := partition.NewPlan(types.Shape{Height: 10, Width: 4}, 3)
//	local, err := c.Scatterv(ctx, 0, pixels, plan.ScatterCounts(), plan.ScatterDispls())
func NewPlan(shape types.Shape, workers int) Plan {
	blocks := Rows(shape.Height, workers)

	return Plan{
		Shape:  shape,
		Blocks: blocks,
		Halos:  Halo(blocks, shape.Height, shape.Width),
	}
}

// Workers returns the number of ranks covered by the plan.
func (p Plan) Workers() int {
	return len(p.Blocks)
}

// ScatterCounts returns the per-rank element counts of the scatter.
func (p Plan) ScatterCounts() []int {
	return p.collect(func(h types.HaloPlan) int { return h.ScatterCount })
}

// ScatterDispls returns the per-rank element offsets of the scatter.
func (p Plan) ScatterDispls() []int {
	return p.collect(func(h types.HaloPlan) int { return h.ScatterOffset })
}

// GatherCounts returns the per-rank element counts of the gather.
func (p Plan) GatherCounts() []int {
	return p.collect(func(h types.HaloPlan) int { return h.GatherCount })
}

// GatherDispls returns the per-rank element offsets of the gather.
func (p Plan) GatherDispls() []int {
	return p.collect(func(h types.HaloPlan) int { return h.GatherOffset })
}

func (p Plan) collect(field func(types.HaloPlan) int) []int {
	out := make([]int, len(p.Halos))
	for i, h := range p.Halos {
		out[i] = field(h)
	}

	return out
}
