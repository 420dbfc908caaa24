package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/render/assembly"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
	"github.com/matzehuels/speakerbox/pkg/render/panel/sink"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, l panel.Layout, design *enclosure.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, format, l, design, opts)
			if err != nil {
				return errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format string, l panel.Layout, design *enclosure.Result, opts Options) ([]byte, error) {
	switch format {
	case FormatDXF:
		var dxfOpts []sink.DXFOption
		if opts.NoLabels {
			dxfOpts = append(dxfOpts, sink.WithoutDXFComments())
		}
		return sink.RenderDXF(l, dxfOpts...), nil
	case FormatSVG:
		return sink.RenderSVG(l, svgOptions(opts)...), nil
	case FormatPDF:
		return sink.RenderPDF(ctx, l, sink.WithPrintSVGOptions(svgOptions(opts)...))
	case FormatPNG:
		return sink.RenderPNG(ctx, l, sink.WithPrintSVGOptions(svgOptions(opts)...), sink.WithScale(opts.Scale))
	case FormatJSON:
		jsonOpts := []sink.JSONOption{sink.WithJSONIndent()}
		if design != nil {
			jsonOpts = append(jsonOpts, sink.WithJSONVolume(design.BoxVolumeLiters))
		}
		return sink.RenderJSON(l, jsonOpts...)
	case FormatDOT:
		return []byte(assembly.ToDOT(l, assemblyOptions(design, opts))), nil
	case FormatAssembly:
		return assembly.RenderSVG(ctx, assembly.ToDOT(l, assemblyOptions(design, opts)))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.NoLabels {
		out = append(out, sink.WithoutSVGLabels())
	}
	if opts.Detailed {
		out = append(out, sink.WithSVGDimensions())
	}
	return out
}

func assemblyOptions(design *enclosure.Result, opts Options) assembly.Options {
	return assembly.Options{Detailed: opts.Detailed, Result: design}
}
