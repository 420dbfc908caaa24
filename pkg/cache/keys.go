package cache

import "strings"

// KeyVersion is mixed into every hashed key.
const KeyVersion = "v1"

// Keyer derives cache keys.
type Keyer interface {
	// CalcKey identifies an enclosure calculation.
	CalcKey(topology string, fs, qts, vas float64) string

	// LayoutKey identifies a panel layout for box dimensions and driver size.
	LayoutKey(opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// ExtractKey identifies a parameter extraction request.
	ExtractKey(model, text string) string
}

// LayoutKeyOpts are the inputs of a panel layout.
type LayoutKeyOpts struct {
	WidthCm          float64
	HeightCm         float64
	DepthCm          float64
	DriverDiameterCm float64
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
	Labels   bool
	Scale    float64
}

// DefaultKeyer hashes inputs into "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) CalcKey(topology string, fs, qts, vas float64) string {
	return hashKey("calc", KeyVersion, strings.ToLower(topology), fs, qts, vas)
}

func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", KeyVersion, opts.WidthCm, opts.HeightCm, opts.DepthCm, opts.DriverDiameterCm)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", KeyVersion, layoutHash, opts.Format, opts.Detailed, opts.Labels, opts.Scale)
}

func (DefaultKeyer) ExtractKey(model, text string) string {
	return hashKey("extract", KeyVersion, model, strings.TrimSpace(text))
}

var _ Keyer = DefaultKeyer{}
