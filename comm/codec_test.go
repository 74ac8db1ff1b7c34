package comm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/stencil/types"
)

func TestPayload_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []int
	}{
		{"empty", []int{}},
		{"pixels", []int{0, 1, 127, 128, 255}},
		{"header", []int{1 << 20, 3}},
		{"negative", []int{-1, -255, math.MinInt32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePayload(encodePayload(tt.data))
			require.NoError(t, err)
			require.Equal(t, tt.data, got)
		})
	}
}

func TestPayload_Compact(t *testing.T) {
	data := make([]int, 1000)
	for i := range data {
		data[i] = i % 64
	}
	require.Less(t, len(encodePayload(data)), 1010)
}

func TestDecodePayload_Malformed(t *testing.T) {
	_, err := decodePayload(nil)
	require.Error(t, err)

	buf := encodePayload([]int{1, 2, 3})
	_, err = decodePayload(buf[:len(buf)-1])
	require.Error(t, err)

	_, err = decodePayload(append(buf, 0))
	require.Error(t, err)

	_, err = decodePayload([]byte{0x64})
	require.Error(t, err)
}

func TestChecksum(t *testing.T) {
	buf := encodePayload([]int{4, 5, 6})
	require.NoError(t, verifyChecksum(buf, checksum(buf)))

	err := verifyChecksum(buf, checksum(encodePayload([]int{4, 5, 7})))
	require.ErrorIs(t, err, types.ErrChecksumMismatch)
}
