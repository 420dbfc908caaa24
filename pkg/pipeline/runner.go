package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/observability"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Design is a calculation result together with the panel dimensions
// derived from its volume.
type Design struct {
	Result     enclosure.Result     `json:"result"`
	Dimensions enclosure.Dimensions `json:"dimensions"`
}

// Execute runs the complete calculate → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Driver: opts.Driver()}

	// Stage 1: Calculate
	start := time.Now()
	design, hit, err := r.CalculateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Design = &design.Result
	result.Dimensions = design.Dimensions
	result.Stats.CalculateTime = time.Since(start)
	result.CacheInfo.CalculateHit = hit
	result.Warnings = append(result.Warnings, DesignWarnings(design.Result)...)

	r.Logger.Info("calculated enclosure",
		"topology", opts.Topology,
		"volume", fmt.Sprintf("%.1f L", design.Result.BoxVolumeLiters),
		"dimensions", design.Dimensions.String(),
		"cached", hit)

	return result, r.layoutAndRender(ctx, result, opts)
}

// ExecuteLayout lays out and renders a box of explicit dimensions.
func (r *Runner) ExecuteLayout(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Dimensions: opts.Dimensions()}
	return result, r.layoutAndRender(ctx, result, opts)
}

func (r *Runner) layoutAndRender(ctx context.Context, result *Result, opts Options) error {
	// Stage 2: Layout
	start := time.Now()
	l, err := r.Layout(ctx, result.Dimensions, opts)
	if err != nil {
		return err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.Warnings = append(result.Warnings, LayoutWarnings(l)...)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, result.Design, opts)
	if err != nil {
		return err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime,
		"cached", hit)

	for _, w := range result.Warnings {
		r.Logger.Warn(w)
	}
	return nil
}

// CalculateWithCacheInfo sizes the enclosure and derives its dimensions,
// returning whether the design came from cache.
func (r *Runner) CalculateWithCacheInfo(ctx context.Context, opts Options) (Design, bool, error) {
	if err := opts.ValidateForCalculate(); err != nil {
		return Design{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnCalculateStart(ctx, opts.Topology)
	start := time.Now()

	key := r.Keyer.CalcKey(opts.Topology, opts.Fs, opts.Qts, opts.Vas)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached Design
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "calc")
				hooks.OnCalculateComplete(ctx, opts.Topology, time.Since(start), nil)
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "calc")
	}

	design, err := Calculate(opts.Driver(), enclosure.Topology(opts.Topology))
	hooks.OnCalculateComplete(ctx, opts.Topology, time.Since(start), err)
	if err != nil {
		return Design{}, false, err
	}

	if data, err := json.Marshal(design); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.CalcTTL); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "calc", len(data))
		}
	}
	return design, false, nil
}

// Calculate is a convenience wrapper that calls CalculateWithCacheInfo and discards the cache hit info.
func (r *Runner) Calculate(ctx context.Context, opts Options) (Design, error) {
	d, _, err := r.CalculateWithCacheInfo(ctx, opts)
	return d, err
}

// Calculate runs the enclosure calculation and derives the panel dimensions
// without any caching.
func Calculate(d enclosure.Driver, t enclosure.Topology) (Design, error) {
	res, err := enclosure.Calculate(d, t)
	if err != nil {
		return Design{}, err
	}
	if err := res.Validate(); err != nil {
		return Design{}, err
	}
	dims, err := enclosure.CalculateDimensions(res.BoxVolumeLiters)
	if err != nil {
		return Design{}, err
	}
	return Design{Result: res, Dimensions: dims}, nil
}

// Layout places the panels for dims on a cut sheet.
func (r *Runner) Layout(ctx context.Context, dims enclosure.Dimensions, opts Options) (panel.Layout, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, 3)
	start := time.Now()

	l, err := panel.FromDimensions(dims, opts.DriverDiameterCm)
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every artifact came from cache. design may be nil for layouts of explicit
// dimensions.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l panel.Layout, design *enclosure.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	base := r.Keyer.LayoutKey(opts.LayoutKeyOpts(enclosure.Dimensions{WidthCm: l.WidthCm, HeightCm: l.HeightCm, DepthCm: l.DepthCm}))
	if design != nil {
		raw, _ := json.Marshal(design)
		base += "|" + cache.Hash(raw)
	}
	layoutHash := cache.Hash([]byte(base))

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, design, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l panel.Layout, design *enclosure.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, design, opts)
	return artifacts, err
}

// DesignWarnings describes simplifications applied to a calculated design.
func DesignWarnings(res enclosure.Result) []string {
	if !res.PortClamped {
		return nil
	}
	return []string{fmt.Sprintf("port length raised to the %.0f cm minimum; tuning will be lower than %.1f Hz",
		enclosure.MinPortLengthCm, res.TuningFrequencyHz)}
}

// LayoutWarnings describes problems a maker should know about before cutting.
func LayoutWarnings(l panel.Layout) []string {
	var out []string
	if !l.CutoutFits() {
		out = append(out, fmt.Sprintf("%s cm driver cutout does not fit the %s × %s cm front panel",
			panel.FormatNumber(l.DriverDiameterCm), panel.FormatNumber(l.WidthCm), panel.FormatNumber(l.HeightCm)))
	}
	for _, o := range l.Overlaps() {
		out = append(out, fmt.Sprintf("%s and %s panels overlap on the sheet", o[0], o[1]))
	}
	return out
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// IsUserError reports whether err was caused by the request rather than the
// system, i.e. whether retrying with the same input can never succeed.
func IsUserError(err error) bool {
	if errors.IsDesignError(err) {
		return true
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTopology, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName:
		return true
	}
	return false
}
