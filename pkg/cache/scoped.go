package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each scope its own
// namespace in a shared backend.
//
//	// Separate keys per catalog collection on one redis instance.
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "collection:judo:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// BuildKey returns the prefixed build key.
func (k *ScopedKeyer) BuildKey(catalogHash string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(catalogHash, opts)
}

// RenderKey returns the prefixed render key. buildKey is passed through
// unchanged and may already carry the prefix.
func (k *ScopedKeyer) RenderKey(buildKey string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(buildKey, opts)
}
