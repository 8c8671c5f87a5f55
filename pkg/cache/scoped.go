package cache

// ScopedKeyer prefixes every key. A Redis instance shared by several
// setups uses one prefix per setup so their calibrations never collide:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab:capable:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SurfaceKey returns the prefixed surface key.
func (k *ScopedKeyer) SurfaceKey(sample string, sizeX, sizeY float64) string {
	return k.prefix + k.inner.SurfaceKey(sample, sizeX, sizeY)
}
