package cache

// ScopedKeyer wraps a Keyer with a prefix. Bumping the prefix orphans
// every entry written under an older entry layout.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "v1:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// CatalogKey generates a prefixed catalog key.
func (k *ScopedKeyer) CatalogKey(token string, opts CatalogKeyOpts) string {
	return k.prefix + k.inner.CatalogKey(token, opts)
}
