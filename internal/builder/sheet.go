package builder

import (
	"bytes"
	"encoding/xml"

	"github.com/kamusis/iconhash-cli/internal/raster"
)

// composeSheet lays docs out on one SVG document following l. A nil doc leaves
// its cell blank. Each icon is preceded by a white rect over its own cell, so
// ink spilling right or down from earlier cells is painted over.
func composeSheet(l Layout, docs []*raster.Document) []byte {
	w, h := raster.FormatFloat(float64(l.Width())), raster.FormatFloat(float64(l.Height()))

	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"`)
	b.WriteString(` width="` + w + `" height="` + h + `" viewBox="0 0 ` + w + ` ` + h + `">`)
	b.WriteString(`<rect x="0" y="0" width="` + w + `" height="` + h + `" fill="#ffffff"/>`)

	for i, doc := range docs {
		if doc == nil {
			continue
		}
		x, y := l.Origin(i)
		b.WriteString(`<rect x="` + raster.FormatFloat(float64(x)) + `" y="` + raster.FormatFloat(float64(y)) +
			`" width="` + raster.FormatFloat(float64(l.CellWidth)) + `" height="` + raster.FormatFloat(float64(l.CellHeight)) + `" fill="#ffffff"/>`)
		fit := raster.FitViewBox(doc.ViewBox, float64(l.CellWidth), float64(l.CellHeight))
		b.WriteString(`<g transform="` + fit.Transform(float64(x), float64(y)) + `"`)
		for _, a := range doc.Presentation {
			b.WriteString(" " + a.Name.Local + `="`)
			_ = xml.EscapeText(&b, []byte(a.Value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		b.Write(doc.Inner)
		b.WriteString("</g>")
	}
	b.WriteString("</svg>")
	return b.Bytes()
}
