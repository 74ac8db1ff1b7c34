package kernel

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	require.Equal(t, 0, Clamp(-1, 0, 4))
	require.Equal(t, 4, Clamp(5, 0, 4))
	require.Equal(t, 2, Clamp(2, 0, 4))
	require.Equal(t, 0, Clamp(1, 0, 0))
}

func TestWeightsSumToDivisor(t *testing.T) {
	sum := 0
	for _, row := range Weights {
		for _, w := range row {
			sum += w
		}
	}
	require.Equal(t, Divisor, sum)
}

func TestReference_HandComputed(t *testing.T) {
	pixels := []int{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}

	out := Reference(pixels, 3, 3)

	// center: 1+4+3 + 8+20+12 + 7+16+9 = 80
	require.Equal(t, 80/16, out[4])
	// top-left: taps clamp to (0,0), (0,1), (1,0), (1,1): 5 + 10 + 17 = 32
	require.Equal(t, 2, out[0])
	// top-right: 11 + 22 + 23 = 56, truncated from 3.5
	require.Equal(t, 3, out[2])
	// bottom-left: 17 + 58 + 29 = 104, truncated from 6.5
	require.Equal(t, 6, out[6])
	// bottom-right: 23 + 70 + 35 = 128
	require.Equal(t, 8, out[8])
}

func TestReference_Impulse(t *testing.T) {
	pixels := []int{
		0, 0, 0,
		0, 255, 0,
		0, 0, 0,
	}

	out := Reference(pixels, 3, 3)

	require.Equal(t, []int{
		15, 31, 15,
		31, 63, 31,
		15, 31, 15,
	}, out)
}

func TestReference_Degenerate(t *testing.T) {
	t.Run("1x1 is blurred from nine copies of itself", func(t *testing.T) {
		require.Equal(t, []int{7}, Reference([]int{7}, 1, 1))
	})

	t.Run("single row", func(t *testing.T) {
		// column weights collapse to 4,8,4
		require.Equal(t, []int{4, 16, 28}, Reference([]int{0, 16, 32}, 1, 3))
	})

	t.Run("single column", func(t *testing.T) {
		require.Equal(t, []int{4, 16, 28}, Reference([]int{0, 16, 32}, 3, 1))
	})

	t.Run("constant image is a fixed point", func(t *testing.T) {
		pixels := make([]int, 4*5)
		for i := range pixels {
			pixels[i] = 200
		}
		require.Equal(t, pixels, Reference(pixels, 4, 5))
	})
}

func TestApply_NoHaloMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pixels := randomPixels(rng, 6*7)

	require.Equal(t, Reference(pixels, 6, 7), Apply(pixels, 6, 7, 6, false))
}

func TestApply_HaloBlocksMatchReferenceRows(t *testing.T) {
	const height, width = 9, 4
	rng := rand.New(rand.NewPCG(3, 4))
	pixels := randomPixels(rng, height*width)
	want := Reference(pixels, height, width)

	tests := []struct {
		name          string
		offset, count int
	}{
		{"top block", 0, 3},
		{"interior block", 3, 3},
		{"bottom block", 6, 3},
		{"single interior row", 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := tt.offset > 0
			bottom := tt.offset+tt.count < height
			start := tt.offset
			if top {
				start--
			}
			ext := tt.count
			if top {
				ext++
			}
			if bottom {
				ext++
			}

			block := append([]int(nil), pixels[start*width:(start+ext)*width]...)
			got := Apply(block, tt.count, width, ext, top)

			require.Equal(t, want[tt.offset*width:(tt.offset+tt.count)*width], got)
		})
	}
}

func TestApply_EmptyBlock(t *testing.T) {
	require.Empty(t, Apply(nil, 0, 3, 0, false))
}

func randomPixels(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rng.IntN(256)
	}

	return out
}
