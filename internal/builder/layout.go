package builder

import (
	"fmt"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

// Layout is the sprite-sheet geometry of one batch. Composing the sheet and
// extracting fingerprints from it both read cell positions from here.
type Layout struct {
	Size       int // hash edge
	Count      int // icons on the sheet
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
}

// NewLayout arranges count icons in at most columns columns. Each cell is the
// (size+1)×size raster a single fingerprint is computed from.
func NewLayout(size, columns, count int) (Layout, error) {
	if err := fingerprint.CheckSize(size); err != nil {
		return Layout{}, err
	}
	if columns <= 0 {
		return Layout{}, fmt.Errorf("%w: columns must be positive, got %d", fingerprint.ErrValidation, columns)
	}
	if count <= 0 {
		return Layout{}, fmt.Errorf("%w: empty batch", fingerprint.ErrValidation)
	}
	if count < columns {
		columns = count
	}
	w, h := fingerprint.RasterSize(size)
	return Layout{
		Size:       size,
		Count:      count,
		Columns:    columns,
		Rows:       (count + columns - 1) / columns,
		CellWidth:  w,
		CellHeight: h,
	}, nil
}

// Width is the sheet width in pixels.
func (l Layout) Width() int { return l.Columns * l.CellWidth }

// Height is the sheet height in pixels.
func (l Layout) Height() int { return l.Rows * l.CellHeight }

// Origin returns the top-left pixel of cell i.
func (l Layout) Origin(i int) (x, y int) {
	return (i % l.Columns) * l.CellWidth, (i / l.Columns) * l.CellHeight
}
