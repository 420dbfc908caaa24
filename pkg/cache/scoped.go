package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis database without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "speakerbox:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) CalcKey(topology string, fs, qts, vas float64) string {
	return k.prefix + k.inner.CalcKey(topology, fs, qts, vas)
}

func (k *ScopedKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

func (k *ScopedKeyer) ExtractKey(model, text string) string {
	return k.prefix + k.inner.ExtractKey(model, text)
}
