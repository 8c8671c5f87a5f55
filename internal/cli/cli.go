// Package cli implements the femtopgm command-line interface.
//
// The CLI is a thin wrapper around the compiler packages:
//   - compile: read a TOML job, compile every object class, write .pgm files
//   - calibrate: measure focus heights and store a fitted warp surface
//   - trace: find the archived compile session that produced a program
//   - cache: inspect or clear the local surface cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/femtopgm/pkg/cache"
	"github.com/matzehuels/femtopgm/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "femtopgm"

	// defaultSample names the surface used when --sample is not given.
	defaultSample = "default"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output that is not logging.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner and Cache Factories
// =============================================================================

func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// cacheFlags select the surface cache backend.
type cacheFlags struct {
	noCache  bool
	redisURL string
	scope    string
}

// open returns the configured backend. Without Redis the file cache under
// the XDG cache directory is used; if that directory cannot be determined
// caching is disabled.
func (f cacheFlags) open(ctx context.Context, logger *log.Logger) (*cache.SurfaceStore, func() error, error) {
	var keyer cache.Keyer
	if f.scope != "" {
		keyer = cache.NewScopedKeyer(nil, f.scope+":")
	}

	var backend cache.Cache
	switch {
	case f.noCache:
		backend = cache.NewNullCache()
	case f.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, f.redisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using redis surface cache", "url", f.redisURL)
		backend = rc
	default:
		dir, err := cacheDir()
		if err != nil {
			logger.Warn("no cache directory, surface cache disabled", "err", err)
			backend = cache.NewNullCache()
			break
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		backend = fc
	}
	backend = cache.Instrument(backend)
	return cache.NewSurfaceStore(backend, keyer), backend.Close, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/femtopgm/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
