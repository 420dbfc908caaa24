package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

const (
	defaultSVGMargin = 20.0
	fontFamily       = `'Helvetica Neue', Helvetica, Arial, sans-serif`
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	margin     float64
	labels     bool
	dimensions bool
}

// WithSVGMargin sets the blank border around the sheet in mm.
func WithSVGMargin(mm float64) SVGOption { return func(r *svgRenderer) { r.margin = mm } }

// WithoutSVGLabels hides panel names.
func WithoutSVGLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithSVGDimensions annotates each panel with its size in centimeters.
func WithSVGDimensions() SVGOption { return func(r *svgRenderer) { r.dimensions = true } }

// RenderSVG draws the cut sheet as an SVG preview. One SVG user unit is one
// millimeter. The sheet's y axis points up, so coordinates are flipped
// into SVG space.
func RenderSVG(l panel.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{margin: defaultSVGMargin, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	b := l.Bounds()
	width := b.Width() + 2*r.margin
	height := b.Height() + 2*r.margin
	// Sheet to SVG space.
	tx := func(x float64) float64 { return x - b.Left + r.margin }
	ty := func(y float64) float64 { return b.Top - y + r.margin }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0fmm" height="%.0fmm">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <rect width="100%" height="100%" fill="white"/>` + "\n")

	for _, p := range l.Panels {
		rect := p.Rect
		fmt.Fprintf(&buf, `  <rect id="panel-%s" class="panel" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="black" stroke-width="0.5"/>`+"\n",
			p.Kind, tx(rect.Left), ty(rect.Top), rect.Width(), rect.Height())

		if c := p.Cutout; c != nil {
			fmt.Fprintf(&buf, `  <circle class="cutout" cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="black" stroke-width="0.5" stroke-dasharray="2,1"/>`+"\n",
				tx(c.Center.X), ty(c.Center.Y), c.Radius)
		}

		fontSize := labelSize(rect)
		if r.labels {
			name := p.Name
			if p.Quantity > 1 {
				name = fmt.Sprintf("%s ×%d", name, p.Quantity)
			}
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" text-anchor="middle">%s</text>`+"\n",
				tx(rect.CenterX()), ty(rect.CenterY()), fontFamily, fontSize, escapeXML(name))
		}
		if r.dimensions {
			dims := fmt.Sprintf("%s × %s cm", panel.FormatNumber(p.WidthCm), panel.FormatNumber(p.HeightCm))
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" text-anchor="middle" fill="#555">%s</text>`+"\n",
				tx(rect.CenterX()), ty(rect.CenterY())+fontSize*1.2, fontFamily, fontSize*0.8, escapeXML(dims))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// labelSize scales text to the smaller side of the panel.
func labelSize(r panel.Rect) float64 {
	s := min(r.Width(), r.Height()) / 8
	return max(2, min(s, 24))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
