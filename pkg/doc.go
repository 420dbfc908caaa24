// Package pkg provides the libraries behind the speakerbox CLI and API.
//
// # Overview
//
// Speakerbox sizes loudspeaker enclosures from a driver's Thiele-Small
// parameters and draws the panels to cut. The pkg directory is organized
// into three areas:
//
//  1. Domain: [enclosure] (box volume, port and dimensions) and [render]
//     (panel layout, DXF and preview serializers, assembly diagram)
//  2. Infrastructure: [cache], [store], [config], [httputil],
//     [observability] and [errors]
//  3. Orchestration: [pipeline] (calculate → layout → render), [extract]
//     (parameters from datasheet text) and [api] (HTTP server)
//
// # Architecture
//
//	fs, qts, vas + topology
//	         ↓
//	    [enclosure] (volume, tuning, port, golden-ratio dimensions)
//	         ↓
//	    [render/panel] (cut-sheet geometry)
//	         ↓
//	    [render/panel/sink] (DXF, SVG, PDF, PNG, JSON)
//
// # Quick Start
//
//	res, err := enclosure.CalculateSealed(enclosure.Driver{Fs: 40, Qts: 0.4, Vas: 50})
//	if err != nil {
//	    return err
//	}
//	dims, _ := enclosure.CalculateDimensions(res.BoxVolumeLiters)
//	dxf, err := sink.GenerateLayout(dims.WidthCm, dims.HeightCm, dims.DepthCm, 12)
//
// The [pipeline] package wraps these steps with caching and is what the CLI
// and the API server use.
//
// [enclosure]: github.com/matzehuels/speakerbox/pkg/enclosure
// [render]: github.com/matzehuels/speakerbox/pkg/render
// [render/panel]: github.com/matzehuels/speakerbox/pkg/render/panel
// [render/panel/sink]: github.com/matzehuels/speakerbox/pkg/render/panel/sink
// [cache]: github.com/matzehuels/speakerbox/pkg/cache
// [store]: github.com/matzehuels/speakerbox/pkg/store
// [config]: github.com/matzehuels/speakerbox/pkg/config
// [httputil]: github.com/matzehuels/speakerbox/pkg/httputil
// [observability]: github.com/matzehuels/speakerbox/pkg/observability
// [errors]: github.com/matzehuels/speakerbox/pkg/errors
// [pipeline]: github.com/matzehuels/speakerbox/pkg/pipeline
// [extract]: github.com/matzehuels/speakerbox/pkg/extract
// [api]: github.com/matzehuels/speakerbox/pkg/api
package pkg
