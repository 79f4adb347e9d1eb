package raster

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 33 32"><rect x="8" y="8" width="16" height="16" fill="#000"/></svg>`

func TestParseDocument_ViewBox(t *testing.T) {
	doc, err := ParseDocument([]byte(squareSVG))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	want := ViewBox{X: 0, Y: 0, W: 33, H: 32}
	if doc.ViewBox != want {
		t.Fatalf("viewBox = %+v, want %+v", doc.ViewBox, want)
	}
	if got := string(doc.Inner); got != `<rect x="8" y="8" width="16" height="16" fill="#000"/>` {
		t.Fatalf("inner = %q", got)
	}
}

func TestParseDocument_Presentation(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><path d="M4 4h16"/></svg>`
	doc, err := ParseDocument([]byte(src))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	var got []string
	for _, a := range doc.Presentation {
		got = append(got, a.Name.Local+"="+a.Value)
	}
	if strings.Join(got, " ") != "fill=none stroke=currentColor stroke-width=2" {
		t.Fatalf("presentation = %v", got)
	}
}

func TestParseDocument_WidthHeightFallback(t *testing.T) {
	doc, err := ParseDocument([]byte(`<?xml version="1.0"?><svg width="24px" height="12"><path d="M0 0h1"/></svg>`))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.ViewBox != (ViewBox{W: 24, H: 12}) {
		t.Fatalf("viewBox = %+v", doc.ViewBox)
	}
}

func TestParseDocument_SelfClosing(t *testing.T) {
	doc, err := ParseDocument([]byte(`<svg viewBox="0 0 10 10"/>`))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(doc.Inner) != 0 {
		t.Fatalf("inner = %q, want empty", doc.Inner)
	}
}

func TestParseDocument_Errors(t *testing.T) {
	cases := map[string]string{
		"not xml":      "this is not svg",
		"wrong root":   `<html></html>`,
		"bad viewBox":  `<svg viewBox="0 0 0 10"></svg>`,
		"no geometry":  `<svg></svg>`,
		"unterminated": `<svg viewBox="0 0 1 1">`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(src)); !errors.Is(err, ErrRasterize) {
				t.Fatalf("err = %v, want ErrRasterize", err)
			}
		})
	}
}

func TestFitViewBox_CentresAndPreservesAspect(t *testing.T) {
	f := FitViewBox(ViewBox{W: 10, H: 20}, 40, 40)
	if f.Scale != 2 || f.OffsetX != 10 || f.OffsetY != 0 {
		t.Fatalf("fit = %+v", f)
	}
	f = FitViewBox(ViewBox{X: 5, Y: 5, W: 10, H: 10}, 20, 20)
	if f.Scale != 2 || f.OffsetX != 0 || f.OriginX != 5 || f.OriginY != 5 {
		t.Fatalf("offset fit = %+v", f)
	}
	if got, want := f.Transform(3, 0), "translate(3,0) scale(2,2) translate(-5,-5)"; got != want {
		t.Fatalf("Transform = %q, want %q", got, want)
	}
}

func TestOKSVG_RasterizeSquare(t *testing.T) {
	g, err := NewOKSVG().Rasterize(context.Background(), []byte(squareSVG), 33, 32, White)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if g.Width != 33 || g.Height != 32 || len(g.Pix) != 33*32 {
		t.Fatalf("size = %dx%d (%d)", g.Width, g.Height, len(g.Pix))
	}
	if g.At(0, 0) != 0xFF {
		t.Fatalf("corner = %d, want white", g.At(0, 0))
	}
	if g.At(16, 16) != 0 {
		t.Fatalf("centre = %d, want black", g.At(16, 16))
	}
}

func TestOKSVG_CurrentColorIsBlack(t *testing.T) {
	src := `<svg viewBox="0 0 10 10"><rect width="10" height="10" fill="currentColor"/></svg>`
	g, err := NewOKSVG().Rasterize(context.Background(), []byte(src), 10, 10, White)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if g.At(5, 5) != 0 {
		t.Fatalf("pixel = %d, want 0", g.At(5, 5))
	}
}

func TestOKSVG_Errors(t *testing.T) {
	r := NewOKSVG()
	if _, err := r.Rasterize(context.Background(), []byte("garbage"), 8, 8, White); !errors.Is(err, ErrRasterize) {
		t.Fatalf("garbage: err = %v", err)
	}
	if _, err := r.Rasterize(context.Background(), []byte(squareSVG), 0, 8, White); !errors.Is(err, ErrRasterize) {
		t.Fatalf("zero frame: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Rasterize(ctx, []byte(squareSVG), 8, 8, White); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled: err = %v", err)
	}
}
