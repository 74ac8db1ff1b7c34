package kernel

// Reference smooths a whole height*width image on a single worker.
//
// It addresses the full buffer directly with the same clamp policy as Apply
// and exists as the oracle distributed runs are checked against.
func Reference(pixels []int, height, width int) []int {
	out := make([]int, height*width)
	for i := range height {
		for j := range width {
			sum := 0
			for ki := -Radius; ki <= Radius; ki++ {
				r := Clamp(i+ki, 0, height-1)
				for kj := -Radius; kj <= Radius; kj++ {
					c := Clamp(j+kj, 0, width-1)
					sum += Weights[ki+Radius][kj+Radius] * pixels[r*width+c]
				}
			}
			out[i*width+j] = sum / Divisor
		}
	}

	return out
}
