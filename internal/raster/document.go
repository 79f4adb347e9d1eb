package raster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ViewBox is the user-space rectangle of an SVG document.
type ViewBox struct {
	X, Y, W, H float64
}

// Document is the part of an SVG file needed to place it inside another one:
// its view box, the inheritable attributes of the root element and the raw
// markup between the root <svg> tags.
type Document struct {
	ViewBox ViewBox
	// Presentation holds root attributes such as fill or stroke that the
	// children inherit.
	Presentation []xml.Attr
	Inner        []byte
}

// rootOnly are root attributes that describe the document rather than style
// its content.
var rootOnly = map[string]bool{
	"width": true, "height": true, "viewBox": true, "x": true, "y": true,
	"version": true, "preserveAspectRatio": true, "id": true, "class": true,
	"role": true, "baseProfile": true, "enable-background": true, "transform": true,
}

func presentationOf(start xml.StartElement) []xml.Attr {
	var out []xml.Attr
	for _, a := range start.Attr {
		switch {
		case a.Name.Space == "xmlns" || a.Name.Local == "xmlns":
		case a.Name.Space != "":
		case rootOnly[a.Name.Local]:
		case strings.HasPrefix(a.Name.Local, "aria-") || strings.HasPrefix(a.Name.Local, "data-"):
		default:
			out = append(out, a)
		}
	}
	return out
}

// ParseDocument reads the root <svg> element of src. The view box comes from
// the viewBox attribute, or from width/height when it is absent.
func ParseDocument(src []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: no <svg> element", ErrRasterize)
			}
			return nil, fmt.Errorf("%w: invalid SVG: %v", ErrRasterize, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, fmt.Errorf("%w: root element is <%s>, want <svg>", ErrRasterize, start.Name.Local)
		}

		vb, err := viewBoxOf(start)
		if err != nil {
			return nil, err
		}
		doc := &Document{ViewBox: vb, Presentation: presentationOf(start)}

		open := int(dec.InputOffset())
		if open > 1 && src[open-2] == '/' {
			return doc, nil // <svg .../>
		}
		end := bytes.LastIndex(src, []byte("</svg"))
		if end < open {
			return nil, fmt.Errorf("%w: unterminated <svg> element", ErrRasterize)
		}
		doc.Inner = src[open:end]
		return doc, nil
	}
}

func viewBoxOf(start xml.StartElement) (ViewBox, error) {
	var viewBox, width, height string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "viewBox":
			viewBox = a.Value
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		}
	}

	if viewBox != "" {
		f := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
		if len(f) == 4 {
			var v [4]float64
			for i, s := range f {
				x, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return ViewBox{}, fmt.Errorf("%w: invalid viewBox %q", ErrRasterize, viewBox)
				}
				v[i] = x
			}
			if v[2] > 0 && v[3] > 0 {
				return ViewBox{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
			}
		}
		return ViewBox{}, fmt.Errorf("%w: invalid viewBox %q", ErrRasterize, viewBox)
	}

	w, h := parseLength(width), parseLength(height)
	if w <= 0 || h <= 0 {
		return ViewBox{}, fmt.Errorf("%w: svg has neither viewBox nor width/height", ErrRasterize)
	}
	return ViewBox{W: w, H: h}, nil
}

// parseLength reads the numeric part of an SVG length ("24", "24px", "1.5em").
// Percentages and unparsable values yield 0.
func parseLength(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0
	}
	num := strings.TrimRightFunc(s, unicode.IsLetter)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Fit places a view box inside a frame: translate by the centring offset,
// scale uniformly, then move the view box origin to zero.
type Fit struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	OriginX float64
	OriginY float64
}

// FitViewBox scales vb uniformly to fit a w×h frame and centres it.
func FitViewBox(vb ViewBox, w, h float64) Fit {
	s := math.Min(w/vb.W, h/vb.H)
	return Fit{
		Scale:   s,
		OffsetX: (w - vb.W*s) / 2,
		OffsetY: (h - vb.H*s) / 2,
		OriginX: vb.X,
		OriginY: vb.Y,
	}
}

// Transform renders the fit, shifted by (dx,dy), as an SVG transform list.
func (f Fit) Transform(dx, dy float64) string {
	return "translate(" + FormatFloat(f.OffsetX+dx) + "," + FormatFloat(f.OffsetY+dy) + ")" +
		" scale(" + FormatFloat(f.Scale) + "," + FormatFloat(f.Scale) + ")" +
		" translate(" + FormatFloat(-f.OriginX) + "," + FormatFloat(-f.OriginY) + ")"
}

// FormatFloat formats v for SVG attributes without losing precision.
func FormatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
