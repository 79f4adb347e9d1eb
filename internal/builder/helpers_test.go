package builder

import (
	"context"
	"encoding/xml"
	"image/color"
	"sync"

	"github.com/kamusis/iconhash-cli/internal/raster"
)

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// countingRasterizer returns a blank frame and records requested sizes. Frames
// wider than failWider fail.
type countingRasterizer struct {
	mu        sync.Mutex
	calls     []int
	failWider int
}

func (c *countingRasterizer) Rasterize(ctx context.Context, _ []byte, w, h int, bg color.Gray) (*raster.Gray, error) {
	c.mu.Lock()
	c.calls = append(c.calls, w)
	c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.failWider > 0 && w > c.failWider {
		return nil, raster.ErrRasterize
	}
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = bg.Y
	}
	return &raster.Gray{Pix: pix, Width: w, Height: h}, nil
}

func (c *countingRasterizer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
