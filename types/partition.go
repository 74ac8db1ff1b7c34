package types

// RowBlock is one worker's contiguous share of image rows.
//
// A partition is an ordered []RowBlock, one entry per rank, tiling [0, H)
// without gaps or overlap.
type RowBlock struct {
	// Rank is the worker index owning this block.
	Rank int `json:"rank"`

	// Count is the number of rows owned by the worker.
	Count int `json:"count"`

	// Offset is the global index of the first owned row.
	Offset int `json:"offset"`
}

// End returns the global index one past the last owned row.
func (b RowBlock) End() int {
	return b.Offset + b.Count
}

// HaloPlan describes the rows a worker must receive beyond its own block so
// the 3x3 window never reads data the worker does not hold, and the element
// windows used by the variable-sized scatter and gather.
//
// Scatter windows of adjacent workers overlap by the shared halo rows. Gather
// windows never overlap.
type HaloPlan struct {
	// Rank is the worker index this plan belongs to.
	Rank int `json:"rank"`

	// Top is true when the worker receives the row above its block.
	Top bool `json:"top"`

	// Bottom is true when the worker receives the row below its block.
	Bottom bool `json:"bottom"`

	// Rows is the number of rows the worker owns (no halo).
	Rows int `json:"rows"`

	// ExtendedRows is Rows plus one for each halo row.
	ExtendedRows int `json:"extendedRows"`

	// ScatterCount is ExtendedRows*Width.
	ScatterCount int `json:"scatterCount"`

	// ScatterOffset is the element offset of the first extended row in the flat image.
	ScatterOffset int `json:"scatterOffset"`

	// GatherCount is Rows*Width.
	GatherCount int `json:"gatherCount"`

	// GatherOffset is the element offset of the first owned row in the flat output.
	GatherOffset int `json:"gatherOffset"`
}

// TopRows returns 1 if the plan carries a top halo row, 0 otherwise.
func (h HaloPlan) TopRows() int {
	if h.Top {
		return 1
	}

	return 0
}

// BottomRows returns 1 if the plan carries a bottom halo row, 0 otherwise.
func (h HaloPlan) BottomRows() int {
	if h.Bottom {
		return 1
	}

	return 0
}
