// Package sink serializes a [panel.Layout] into output formats.
//
// # DXF
//
// [RenderDXF] writes the cut sheet as ASCII DXF (AutoCAD 2000, AC1015) for
// CAD and CNC tools. Output is byte-for-byte deterministic: the same
// layout always produces the same document. [GenerateLayout] combines
// layout and serialization for callers holding raw dimensions:
//
//	dxf, err := sink.GenerateLayout(29, 46, 18, 12)
//
// # SVG, PDF and PNG
//
// [RenderSVG] draws a preview at one user unit per millimeter.
// [RenderPDF] and [RenderPNG] convert that preview through rsvg-convert
// (librsvg) and fail with UNSUPPORTED when the tool is missing.
//
// # JSON
//
// [RenderJSON] exports panel rectangles, the driver cutout, and the cut
// list for external tools.
//
// [panel.Layout]: github.com/matzehuels/speakerbox/pkg/render/panel.Layout
package sink
