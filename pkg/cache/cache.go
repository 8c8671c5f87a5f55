// Package cache persists fitted warp-compensation surfaces between sessions.
//
// The compiler never fits or stores a surface itself. The calibrate command
// fits one and writes it here, and the compile command reads it back before
// building the coordinate frame. Three backends share the [Cache] interface:
//
//   - [FileCache]: JSON entries under the XDG cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance for several writing stations
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// Keys are built by a [Keyer] so that every backend agrees on them.
package cache

import (
	"context"
	"time"
)

// TTLSurface is how long a calibration stays valid. A sample is
// recalibrated after remounting, so a week is generous.
const TTLSurface = 7 * 24 * time.Hour

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero keeps the entry until it is deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SurfaceKey identifies the surface of a named sample of the given size.
	SurfaceKey(sample string, sizeX, sizeY float64) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SurfaceKey returns "surface:<sha256>".
func (DefaultKeyer) SurfaceKey(sample string, sizeX, sizeY float64) string {
	return hashKey("surface", sample, sizeX, sizeY)
}
