package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects or
// deployments can share one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "team-a:")
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

// ParseKey generates a prefixed parse key.
func (k *ScopedKeyer) ParseKey(sourceHash string) string {
	return k.prefix + k.inner.ParseKey(sourceHash)
}

// AnalysisKey generates a prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(sourceHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(sourceHash, opts)
}
