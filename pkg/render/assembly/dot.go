package assembly

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// Options configures assembly diagram generation.
type Options struct {
	// Detailed adds panel sizes and acoustic figures to node labels.
	Detailed bool

	// Result, when set, adds the port for ported designs and the box
	// volume to the title.
	Result *enclosure.Result
}

type node struct {
	id    string
	label string
	attrs []string
}

// ToDOT describes the box as a Graphviz DOT digraph in glue-up order: the
// driver mounts in the front baffle, the sides join the front, the top and
// bottom close the sides, and the back panel seals the box. The back panel
// is not on the cut sheet and is drawn dashed.
func ToDOT(l panel.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if r := opts.Result; r != nil {
		fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s box, %.1f L", r.Topology, r.BoxVolumeLiters))
		buf.WriteString("  labelloc=t;\n")
	}
	buf.WriteString("\n")

	nodes, edges := buildGraph(l, opts)
	for _, n := range nodes {
		attrs := append([]string{fmt.Sprintf("label=%q", n.label)}, n.attrs...)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func buildGraph(l panel.Layout, opts Options) ([]node, [][2]string) {
	size := func(name string, a, b float64) string {
		if !opts.Detailed {
			return name
		}
		return fmt.Sprintf("%s\n%s × %s cm", name, panel.FormatNumber(a), panel.FormatNumber(b))
	}

	driver := "Driver"
	if opts.Detailed {
		driver = fmt.Sprintf("Driver\nø %s cm", panel.FormatNumber(l.DriverDiameterCm))
	}

	nodes := []node{
		{id: "driver", label: driver, attrs: []string{"shape=ellipse"}},
		{id: "front", label: size("Front", l.WidthCm, l.HeightCm)},
		{id: "side_left", label: size("Side (left)", l.DepthCm, l.HeightCm)},
		{id: "side_right", label: size("Side (right)", l.DepthCm, l.HeightCm)},
		{id: "top", label: size("Top", l.WidthCm, l.DepthCm)},
		{id: "bottom", label: size("Bottom", l.WidthCm, l.DepthCm)},
		{id: "back", label: size("Back", l.WidthCm, l.HeightCm), attrs: []string{"style=\"rounded,filled,dashed\"", "fillcolor=lightgrey"}},
	}
	edges := [][2]string{
		{"driver", "front"},
		{"front", "side_left"},
		{"front", "side_right"},
		{"side_left", "top"},
		{"side_right", "top"},
		{"side_left", "bottom"},
		{"side_right", "bottom"},
		{"top", "back"},
		{"bottom", "back"},
	}

	if r := opts.Result; r != nil && r.Topology == enclosure.Ported {
		port := "Port"
		if opts.Detailed {
			port = fmt.Sprintf("Port\nø %.1f × %.1f cm\nFb %.1f Hz", r.PortDiameterCm, r.PortLengthCm, r.TuningFrequencyHz)
		}
		nodes = append(nodes, node{id: "port", label: port, attrs: []string{"shape=cylinder"}})
		edges = append(edges, [2]string{"port", "front"})
	}
	return nodes, edges
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
