// Package raster turns SVG documents into grayscale pixel buffers.
package raster

import (
	"context"
	"errors"
	"image/color"
)

// ErrRasterize indicates the renderer could not produce pixels for a source.
var ErrRasterize = errors.New("rasterization failed")

// White is the background used for fingerprinting.
var White = color.Gray{Y: 0xFF}

// Gray is a row-major 8-bit grayscale raster, one byte per pixel.
type Gray struct {
	Pix    []byte
	Width  int
	Height int
}

// At returns the pixel at (x,y).
func (g *Gray) At(x, y int) byte {
	return g.Pix[y*g.Width+x]
}

// Rasterizer renders a vector document to exactly width×height pixels. The
// content is scaled to fit the frame with its aspect ratio preserved, centred,
// and the rest of the frame is filled with background.
//
// Implementations must be safe for concurrent use.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, width, height int, background color.Gray) (*Gray, error)
}
