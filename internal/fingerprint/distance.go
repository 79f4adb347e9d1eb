package fingerprint

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

// HammingDistance returns the number of differing bits between a and b.
func HammingDistance(a, b []byte) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d bytes", ErrLengthMismatch, len(a), len(b))
	}
	return distance(a, b), nil
}

// DistanceAt returns the Hamming distance between query and the len(query)
// bytes of buf starting at offset. Nothing is copied.
func DistanceAt(query, buf []byte, offset int) (int, error) {
	if offset < 0 || offset+len(query) > len(buf) {
		return 0, fmt.Errorf("%w: window [%d,%d) outside %d-byte buffer", ErrLengthMismatch, offset, offset+len(query), len(buf))
	}
	return distance(query, buf[offset:offset+len(query)]), nil
}

// Similarity returns 1 - distance/(8*len(a)).
func Similarity(a, b []byte) (float64, error) {
	d, err := HammingDistance(a, b)
	if err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 1, nil
	}
	return SimilarityFromDistance(d, len(a)), nil
}

// SimilarityFromDistance converts a bit distance over byteLen-byte
// fingerprints into a similarity in [0,1].
func SimilarityFromDistance(d, byteLen int) float64 {
	return 1 - float64(d)/float64(byteLen*8)
}

// MaxDistance converts a similarity floor into the largest tolerable bit
// distance for byteLen-byte fingerprints.
func MaxDistance(threshold float64, byteLen int) int {
	return int(math.Floor((1 - threshold) * float64(byteLen*8)))
}

// Distance is the unchecked kernel used by the matcher once lengths have been
// validated for the whole scan. a and b must have equal length.
func Distance(a, b []byte) int {
	return distance(a, b)
}

func distance(a, b []byte) int {
	n := 0
	i := 0
	b = b[:len(a)]
	for ; i+4 <= len(a); i += 4 {
		n += bits.OnesCount32(binary.LittleEndian.Uint32(a[i:]) ^ binary.LittleEndian.Uint32(b[i:]))
	}
	for ; i < len(a); i++ {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return n
}
