// Package pipeline runs the complete enclosure design flow used by the CLI
// and the API server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Calculate: size the box from Thiele-Small parameters and derive
//     golden-ratio panel dimensions
//  2. Layout: place the panels on a cut sheet
//  3. Render: serialize the sheet (DXF, SVG, PDF, PNG, JSON) and the
//     assembly diagram (DOT, assembly SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Fs: 40, Qts: 0.4, Vas: 50,
//	    Topology: "sealed",
//	    Formats:  []string{"dxf"},
//	})
//	if err != nil {
//	    return err
//	}
//	dxf := result.Artifacts["dxf"]
//
// When the box dimensions are already known, [Runner.ExecuteLayout] skips
// the calculation:
//
//	result, err := runner.ExecuteLayout(ctx, pipeline.Options{
//	    WidthCm: 29, HeightCm: 46, DepthCm: 18, DriverDiameterCm: 12,
//	})
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// Format constants for output formats.
const (
	FormatDXF      = "dxf"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatAssembly = "assembly"
)

// DefaultPNGScale is the raster scale factor for PNG output.
const DefaultPNGScale = 2.0

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatDXF, FormatSVG, FormatPDF, FormatPNG, FormatJSON, FormatDOT, FormatAssembly}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatDXF:      "application/dxf",
	FormatSVG:      "image/svg+xml",
	FormatPNG:      "image/png",
	FormatPDF:      "application/pdf",
	FormatJSON:     "application/json",
	FormatDOT:      "text/vnd.graphviz",
	FormatAssembly: "image/svg+xml",
}

// Extensions maps each format to its file extension.
var Extensions = map[string]string{
	FormatDXF:      ".dxf",
	FormatSVG:      ".svg",
	FormatPNG:      ".png",
	FormatPDF:      ".pdf",
	FormatJSON:     ".json",
	FormatDOT:      ".dot",
	FormatAssembly: ".assembly.svg",
}

// Options contains all configuration for the design pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Calculation inputs
	Fs       float64 `json:"fs,omitempty"`
	Qts      float64 `json:"qts,omitempty"`
	Vas      float64 `json:"vas,omitempty"`
	Topology string  `json:"topology,omitempty"`

	// Layout inputs. The box dimensions are only read by ExecuteLayout;
	// Execute derives them from the calculated volume.
	WidthCm          float64 `json:"width_cm,omitempty"`
	HeightCm         float64 `json:"height_cm,omitempty"`
	DepthCm          float64 `json:"depth_cm,omitempty"`
	DriverDiameterCm float64 `json:"driver_diameter_cm,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`  // sizes on the SVG preview and assembly diagram
	NoLabels bool     `json:"no_labels,omitempty"` // omit DXF comments and SVG labels
	Scale    float64  `json:"scale,omitempty"`     // PNG scale factor

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Driver     enclosure.Driver
	Design     *enclosure.Result // nil for ExecuteLayout
	Dimensions enclosure.Dimensions
	Layout     panel.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings are non-fatal problems with the design, e.g. a driver
	// cutout wider than the front panel.
	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CalculateTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CalculateHit bool // Whether the calculation came from cache
	RenderHit    bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCalculate(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := errors.ValidateDimension("driver diameter", o.DriverDiameterCm); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCalculate checks the driver parameters and normalizes the
// topology name.
func (o *Options) ValidateForCalculate() error {
	if err := o.Driver().Validate(); err != nil {
		return err
	}
	t, err := enclosure.ParseTopology(o.Topology)
	if err != nil {
		return err
	}
	o.Topology = string(t)

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults fills in the driver diameter.
func (o *Options) SetLayoutDefaults() {
	if o.DriverDiameterCm == 0 {
		o.DriverDiameterCm = panel.DefaultDriverDiameterCm
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout checks explicit box dimensions.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Dimensions().Validate(); err != nil {
		return err
	}
	return errors.ValidateDimension("driver diameter", o.DriverDiameterCm)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDXF}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// Driver returns the driver described by the options.
func (o *Options) Driver() enclosure.Driver {
	return enclosure.Driver{Fs: o.Fs, Qts: o.Qts, Vas: o.Vas}
}

// Dimensions returns the explicit box dimensions.
func (o *Options) Dimensions() enclosure.Dimensions {
	return enclosure.Dimensions{WidthCm: o.WidthCm, HeightCm: o.HeightCm, DepthCm: o.DepthCm}
}

// LayoutKeyOpts returns cache key options for a layout of dims.
func (o *Options) LayoutKeyOpts(dims enclosure.Dimensions) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		WidthCm:          dims.WidthCm,
		HeightCm:         dims.HeightCm,
		DepthCm:          dims.DepthCm,
		DriverDiameterCm: o.DriverDiameterCm,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		Labels:   !o.NoLabels,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
