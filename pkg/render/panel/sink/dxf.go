package sink

import (
	"bytes"
	"strconv"

	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// DXF group codes used by the writer.
const (
	codeEntity  = 0
	codeName    = 2
	codeLayer   = 8
	codeVarName = 9
	codeText    = 1
	codeX1      = 10
	codeY1      = 20
	codeX2      = 11
	codeY2      = 21
	codeRadius  = 40
	codeComment = 999
)

// acadVersion is the AutoCAD 2000 header version.
const acadVersion = "AC1015"

// DXFOption configures RenderDXF.
type DXFOption func(*dxfRenderer)

type dxfRenderer struct {
	layer    string
	comments bool
}

// WithDXFLayer sets the layer name for every entity. The default is "0".
func WithDXFLayer(name string) DXFOption { return func(r *dxfRenderer) { r.layer = name } }

// WithoutDXFComments omits the 999 panel labels.
func WithoutDXFComments() DXFOption { return func(r *dxfRenderer) { r.comments = false } }

// RenderDXF serializes a layout as an ASCII DXF document.
//
// The document has empty TABLES and BLOCKS sections and an ENTITIES section
// holding, per panel group, a 999 label line, four LINE entities tracing the
// outline, and for the front panel a CIRCLE for the driver cutout. Group
// codes and values sit on alternating lines joined by "\n" with no trailing
// newline after EOF. Coordinates are written as the shortest decimal that
// round-trips.
func RenderDXF(l panel.Layout, opts ...DXFOption) []byte {
	r := dxfRenderer{layer: "0", comments: true}
	for _, opt := range opts {
		opt(&r)
	}

	w := &dxfWriter{}
	w.section("HEADER")
	w.pair(codeVarName, "$ACADVER")
	w.pair(codeText, acadVersion)
	w.endSection()
	w.section("TABLES")
	w.endSection()
	w.section("BLOCKS")
	w.endSection()

	w.section("ENTITIES")
	for _, p := range l.Panels {
		if r.comments {
			w.pair(codeComment, p.Label())
		}
		for _, e := range p.Rect.Edges() {
			w.line(r.layer, e)
		}
		if p.Cutout != nil {
			w.circle(r.layer, *p.Cutout)
		}
	}
	w.endSection()
	w.pair(codeEntity, "EOF")

	return w.buf.Bytes()
}

// GenerateLayout lays out and serializes the panels for a box in one step.
// It is the single entry point hosts call with raw centimeter inputs.
func GenerateLayout(widthCm, heightCm, depthCm, driverDiameterCm float64) (string, error) {
	l, err := panel.New(widthCm, heightCm, depthCm, driverDiameterCm)
	if err != nil {
		return "", err
	}
	return string(RenderDXF(l)), nil
}

type dxfWriter struct {
	buf bytes.Buffer
}

func (w *dxfWriter) pair(code int, value string) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	w.buf.WriteString(strconv.Itoa(code))
	w.buf.WriteByte('\n')
	w.buf.WriteString(value)
}

func (w *dxfWriter) num(code int, v float64) {
	w.pair(code, panel.FormatNumber(v))
}

func (w *dxfWriter) section(name string) {
	w.pair(codeEntity, "SECTION")
	w.pair(codeName, name)
}

func (w *dxfWriter) endSection() {
	w.pair(codeEntity, "ENDSEC")
}

func (w *dxfWriter) line(layer string, s panel.Segment) {
	w.pair(codeEntity, "LINE")
	w.pair(codeLayer, layer)
	w.num(codeX1, s.From.X)
	w.num(codeY1, s.From.Y)
	w.num(codeX2, s.To.X)
	w.num(codeY2, s.To.Y)
}

func (w *dxfWriter) circle(layer string, c panel.Circle) {
	w.pair(codeEntity, "CIRCLE")
	w.pair(codeLayer, layer)
	w.num(codeX1, c.Center.X)
	w.num(codeY1, c.Center.Y)
	w.num(codeRadius, c.Radius)
}
