package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/femtopgm/pkg/observability"
)

// Instrumented reports hits, misses and writes of the wrapped cache to the
// registered observability.CacheHooks. The key type is the key prefix up
// to the first colon, after any scope prefix.
type Instrumented struct {
	Cache
}

// Instrument wraps c.
func Instrument(c Cache) Cache {
	return &Instrumented{Cache: c}
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
