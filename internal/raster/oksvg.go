package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// OKSVG renders with the pure-Go oksvg/rasterx pipeline.
type OKSVG struct{}

// NewOKSVG returns the default Rasterizer.
func NewOKSVG() *OKSVG { return &OKSVG{} }

var currentColor = []byte("currentColor")

// Rasterize implements Rasterizer.
func (OKSVG) Rasterize(ctx context.Context, svg []byte, width, height int, background color.Gray) (g *Gray, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid frame %dx%d", ErrRasterize, width, height)
	}

	doc, err := ParseDocument(svg)
	if err != nil {
		return nil, err
	}

	// oksvg panics on some malformed path data.
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("%w: renderer panic: %v", ErrRasterize, r)
		}
	}()

	src := bytes.ReplaceAll(svg, currentColor, []byte("#000000"))
	icon, err := oksvg.ReadIconStream(bytes.NewReader(src), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	fit := FitViewBox(doc.ViewBox, float64(width), float64(height))
	icon.Transform = rasterx.Identity.
		Translate(fit.OffsetX, fit.OffsetY).
		Scale(fit.Scale, fit.Scale).
		Translate(-fit.OriginX, -fit.OriginY)

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)

	return toGray(rgba), nil
}

// toGray converts using ITU-R BT.601 luma weights.
func toGray(img *image.RGBA) *Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Gray{Pix: make([]byte, w*h), Width: w, Height: h}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*w : (y+1)*w]
		for x := range dst {
			r, g, bl := uint32(row[x*4]), uint32(row[x*4+1]), uint32(row[x*4+2])
			dst[x] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
		}
	}
	return out
}
