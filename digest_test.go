package stencil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	a := []int{1, 2, 3, -4}

	require.Equal(t, Digest(a), Digest([]int{1, 2, 3, -4}))
	require.NotEqual(t, Digest(a), Digest([]int{1, 2, 3, 4}))
	require.NotEqual(t, Digest(a), Digest([]int{2, 1, 3, -4}))
	require.NotEqual(t, Digest(nil), Digest([]int{0}))
}
