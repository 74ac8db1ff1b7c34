package kernel

// Radius is the number of rows/columns the window reaches past the center.
const Radius = 1

// Divisor normalizes the weighted sum. The quotient is truncated, not rounded.
const Divisor = 16

// Weights is the 3x3 window, indexed [row offset+1][column offset+1].
var Weights = [3][3]int{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// Clamp returns v limited to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// Apply runs the stencil over a worker's extended block.
//
// The block holds extRows rows of width columns: the worker's own rows plus
// an optional halo row above (top) and below. Output row i is computed from
// extended row i+1 when top is set, i otherwise. Row taps clamp against
// [0, extRows) rather than the global image, so an edge without a halo row
// clamps to the worker's own boundary row exactly as the whole-image
// reference clamps to the image boundary.
//
// Parameters:
//   - block: extRows*width elements, row-major
//   - rows: Number of output rows (the worker's own rows)
//   - width: Number of columns
//   - extRows: Number of rows in block
//   - top: Whether block starts with a halo row
//
// Returns:
//   - []int: rows*width smoothed elements
func Apply(block []int, rows, width, extRows int, top bool) []int {
	out := make([]int, rows*width)
	if rows == 0 || width == 0 {
		return out
	}

	shift := 0
	if top {
		shift = 1
	}
	lastRow, lastCol := extRows-1, width-1

	for i := range rows {
		e := i + shift
		dst := out[i*width : (i+1)*width]
		for j := range width {
			sum := 0
			for ki := -Radius; ki <= Radius; ki++ {
				row := block[Clamp(e+ki, 0, lastRow)*width:]
				w := Weights[ki+Radius]
				for kj := -Radius; kj <= Radius; kj++ {
					sum += w[kj+Radius] * row[Clamp(j+kj, 0, lastCol)]
				}
			}
			dst[j] = sum / Divisor
		}
	}

	return out
}
