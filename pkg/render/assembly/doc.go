// Package assembly renders a box as a Graphviz diagram of its panels and
// the order they are glued together.
//
// # Usage
//
//	dot := assembly.ToDOT(layout, assembly.Options{Detailed: true, Result: &res})
//	svg, err := assembly.RenderSVG(ctx, dot)
//
// Graphviz runs in-process through a WebAssembly build
// (github.com/goccy/go-graphviz), so no system installation is needed for
// SVG. PDF and PNG go through rsvg-convert like the cut sheet.
package assembly
