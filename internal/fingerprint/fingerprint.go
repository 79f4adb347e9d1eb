// Package fingerprint derives difference-hash fingerprints from grayscale
// rasters and compares them by Hamming distance.
package fingerprint

import (
	"encoding/hex"
	"fmt"
)

const (
	// DefaultSize is the hash edge length used by shipped indexes.
	DefaultSize = 32

	// Len is the byte length of a fingerprint at DefaultSize.
	Len = DefaultSize * DefaultSize / 8

	// Bits is the bit length of a fingerprint at DefaultSize.
	Bits = Len * 8
)

// Fingerprint is a packed difference hash, MSB first in row-major scan order.
type Fingerprint []byte

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f)
}

// ByteLen returns the fingerprint length produced for a hash edge of size.
func ByteLen(size int) int {
	return size * size / 8
}

// RasterSize returns the width and height of the raster Compute expects for
// a hash edge of size: one extra column so every pixel has a right neighbour.
func RasterSize(size int) (width, height int) {
	return size + 1, size
}

// CheckSize reports whether size is usable as a hash edge length. The edge
// must be a positive multiple of 8 so the fingerprint packs into whole bytes.
func CheckSize(size int) error {
	if size <= 0 || size%8 != 0 {
		return fmt.Errorf("%w: %d (must be a positive multiple of 8)", ErrInvalidSize, size)
	}
	return nil
}

// Compute derives the fingerprint of a (size+1)×size grayscale raster.
//
// Bit k = y*size + x is set when pixel (x,y) is strictly darker than its right
// neighbour (x+1,y).
func Compute(pixels []byte, size int) (Fingerprint, error) {
	if err := CheckSize(size); err != nil {
		return nil, err
	}
	w, h := RasterSize(size)
	if len(pixels) != w*h {
		return nil, fmt.Errorf("%w: pixel buffer is %d bytes, want %d (%dx%d)", ErrInvalidSize, len(pixels), w*h, w, h)
	}
	return ComputeRegion(pixels, w, 0, 0, size)
}

// ComputeRegion applies the difference hash to the (size+1)×size window whose
// top-left corner is (x0,y0) inside a larger raster with the given row stride.
// Comparisons never leave the window, so neighbouring cells of a sprite sheet
// do not influence each other.
func ComputeRegion(pixels []byte, stride, x0, y0, size int) (Fingerprint, error) {
	if err := CheckSize(size); err != nil {
		return nil, err
	}
	w, h := RasterSize(size)
	if x0 < 0 || y0 < 0 || stride < x0+w {
		return nil, fmt.Errorf("%w: region at (%d,%d) does not fit stride %d", ErrInvalidSize, x0, y0, stride)
	}
	if (y0+h-1)*stride+x0+w > len(pixels) {
		return nil, fmt.Errorf("%w: region at (%d,%d) exceeds %d-byte raster", ErrInvalidSize, x0, y0, len(pixels))
	}

	out := make(Fingerprint, ByteLen(size))
	k := 0
	for y := 0; y < size; y++ {
		row := pixels[(y0+y)*stride+x0 : (y0+y)*stride+x0+w]
		for x := 0; x < size; x++ {
			if row[x] < row[x+1] {
				out[k>>3] |= 0x80 >> uint(k&7)
			}
			k++
		}
	}
	return out, nil
}
