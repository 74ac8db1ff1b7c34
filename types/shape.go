package types

import (
	"fmt"
	"math"
)

// HeaderLen is the number of leading elements in the flat input encoding
// that carry the image shape: element 0 is the height, element 1 the width.
const HeaderLen = 2

// MaxElements bounds Height*Width. Counts and displacements travel as
// 32-bit quantities on the wire, so larger images are rejected up front.
const MaxElements = math.MaxInt32

// Shape describes the dimensions of a row-major image.
type Shape struct {
	// Height is the number of rows (H > 0).
	Height int `json:"height"`

	// Width is the number of columns (Wd > 0).
	Width int `json:"width"`
}

// Elements returns Height*Width.
func (s Shape) Elements() int {
	return s.Height * s.Width
}

// InputLen returns the exact length of the flat encoded input for this shape.
func (s Shape) InputLen() int {
	return HeaderLen + s.Elements()
}

// String returns "HxW".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Height, s.Width)
}
