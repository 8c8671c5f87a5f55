package cache

import (
	"context"
	"fmt"

	"github.com/matzehuels/femtopgm/pkg/warp"
)

// SurfaceStore saves and loads fitted surfaces.
type SurfaceStore struct {
	Cache Cache
	Keyer Keyer
}

// NewSurfaceStore returns a store on c using the default keyer when keyer
// is nil.
func NewSurfaceStore(c Cache, keyer Keyer) *SurfaceStore {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &SurfaceStore{Cache: c, Keyer: keyer}
}

// Save stores s for the named sample.
func (s *SurfaceStore) Save(ctx context.Context, sample string, sizeX, sizeY float64, surf warp.Surface) error {
	data, err := surf.Marshal()
	if err != nil {
		return fmt.Errorf("encode surface: %w", err)
	}
	return s.Cache.Set(ctx, s.Keyer.SurfaceKey(sample, sizeX, sizeY), data, TTLSurface)
}

// Load returns the stored surface, or ErrCacheMiss when there is none.
func (s *SurfaceStore) Load(ctx context.Context, sample string, sizeX, sizeY float64) (warp.Surface, error) {
	data, ok, err := s.Cache.Get(ctx, s.Keyer.SurfaceKey(sample, sizeX, sizeY))
	if err != nil {
		return warp.Surface{}, err
	}
	if !ok {
		return warp.Surface{}, fmt.Errorf("surface for sample %q (%gx%g mm): %w", sample, sizeX, sizeY, ErrCacheMiss)
	}
	return warp.Unmarshal(data)
}
