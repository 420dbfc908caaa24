// Package render turns enclosure designs into drawings.
//
// # Overview
//
//   - [panel]: flat cut-sheet geometry for the box panels
//   - [panel/sink]: DXF, SVG, PDF, PNG and JSON serializers for a layout
//   - [assembly]: Graphviz diagram of how the panels join
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both the cut-sheet and assembly renderers use them.
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [panel]: github.com/matzehuels/speakerbox/pkg/render/panel
// [panel/sink]: github.com/matzehuels/speakerbox/pkg/render/panel/sink
// [assembly]: github.com/matzehuels/speakerbox/pkg/render/assembly
package render
