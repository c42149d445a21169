package cache

// ScopedKeyer wraps a Keyer with a prefix so several scenes or deployments
// can share one backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "scene:harbor:")
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

// ElementsKey generates a prefixed key for element caching.
func (k *ScopedKeyer) ElementsKey(opts ElementsKeyOpts) string {
	return k.prefix + k.inner.ElementsKey(opts)
}
