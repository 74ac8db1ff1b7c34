package stencil

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Digest returns the xxh3 hash of pixels encoded as little-endian int64s.
//
// Equal outputs have equal digests across processes and platforms, which
// lets the CLI print a short fingerprint instead of the image.
func Digest(pixels []int) uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, p := range pixels {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(p)))
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}
