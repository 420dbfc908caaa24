package sink

import (
	"context"

	"github.com/matzehuels/speakerbox/pkg/render"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// PrintOption configures RenderPDF and RenderPNG.
type PrintOption func(*printRenderer)

type printRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPrintSVGOptions passes options through to the underlying SVG renderer.
func WithPrintSVGOptions(opts ...SVGOption) PrintOption {
	return func(r *printRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0).
func WithScale(s float64) PrintOption {
	return func(r *printRenderer) { r.scale = s }
}

// RenderPDF renders the cut sheet as a printable PDF. Since one SVG unit is
// one millimeter, the PDF prints at 1:1 scale.
func RenderPDF(ctx context.Context, l panel.Layout, opts ...PrintOption) ([]byte, error) {
	r := newPrintRenderer(opts)
	return render.ToPDF(ctx, RenderSVG(l, r.svgOpts...))
}

// RenderPNG renders the cut sheet as a raster image.
func RenderPNG(ctx context.Context, l panel.Layout, opts ...PrintOption) ([]byte, error) {
	r := newPrintRenderer(opts)
	return render.ToPNG(ctx, RenderSVG(l, r.svgOpts...), r.scale)
}

func newPrintRenderer(opts []PrintOption) printRenderer {
	r := printRenderer{scale: 2.0, svgOpts: []SVGOption{WithSVGDimensions()}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
