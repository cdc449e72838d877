package treetop

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest returns a hash of heights' dimensions and values. Grids with equal
// dimensions and values have equal digests.
func Digest(heights *HeightGrid) uint64 {
	d := xxhash.New()
	var header [16]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(heights.height))
	binary.LittleEndian.PutUint64(header[8:16], uint64(heights.width))
	_, _ = d.Write(header[:])
	values := make([]byte, len(heights.values))
	for i, height := range heights.values {
		values[i] = byte(height)
	}
	_, _ = d.Write(values)
	return d.Sum64()
}
