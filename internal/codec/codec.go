// Package codec encodes and decodes dense embedding vectors to and from the
// flat byte blobs stored in SQLite. The wire form is a sequence of 32-bit
// little-endian IEEE-754 floats with no header, stable across hosts.
package codec

import (
	"encoding/binary"
	"math"
)

// Encode converts a vector into its little-endian byte blob.
func Encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode converts a byte blob back into a vector. A trailing partial float
// (len(b)%4 != 0) is discarded rather than treated as an error: these blobs
// are a cache, and corruption here should degrade, not crash, reads.
func Decode(b []byte) []float32 {
	n := len(b) / 4
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : i*4+4]))
	}
	return out
}
