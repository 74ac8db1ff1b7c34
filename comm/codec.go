package comm

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/stencil/types"
)

// encodePayload writes the element count followed by each element as a
// zig-zag varint. Pixel data is mostly small, so this is far smaller than
// fixed-width encoding.
func encodePayload(data []int) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(data)*2)
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	for _, v := range data {
		buf = binary.AppendVarint(buf, int64(v))
	}

	return buf
}

// decodePayload reverses encodePayload.
func decodePayload(buf []byte) ([]int, error) {
	n, read := binary.Uvarint(buf)
	if read <= 0 {
		return nil, fmt.Errorf("payload: bad element count")
	}
	buf = buf[read:]
	if n > uint64(len(buf)) {
		return nil, fmt.Errorf("payload: %d elements declared in %d bytes", n, len(buf))
	}

	out := make([]int, n)
	for i := range out {
		v, read := binary.Varint(buf)
		if read <= 0 {
			return nil, fmt.Errorf("payload: bad element %d", i)
		}
		out[i] = int(v)
		buf = buf[read:]
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("payload: %d trailing bytes", len(buf))
	}

	return out, nil
}

// checksum returns the hex xxh3 digest of an encoded payload.
func checksum(buf []byte) string {
	return strconv.FormatUint(xxh3.Hash(buf), 16)
}

// verifyChecksum checks buf against the digest carried in a message header.
func verifyChecksum(buf []byte, want string) error {
	if got := checksum(buf); got != want {
		return fmt.Errorf("%w: got %s, header %s", types.ErrChecksumMismatch, got, want)
	}

	return nil
}
