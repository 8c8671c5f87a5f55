package geometry

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// Warp is a fitted focus-height compensation surface.
// Implementations are evaluated, never refitted, by the compiler.
type Warp interface {
	Eval(x, y float64) float64
}

// zeroWarp is used when warp compensation is disabled.
type zeroWarp struct{}

func (zeroWarp) Eval(float64, float64) float64 { return 0 }

// FrameConfig holds the values a Frame is built from.
type FrameConfig struct {
	OriginX, OriginY float64 // new origin in raw coordinates, mm
	Angle            float64 // in-plane rotation, radians
	SampleX, SampleY float64 // sample bounding box, mm
	Warp             Warp    // nil disables compensation
}

// Frame is the coordinate frame of one compilation session.
// It is immutable after NewFrame returns and safe for concurrent reads.
type Frame struct {
	origin f64.Vec2
	angle  float64
	sample f64.Vec2
	warp   Warp
	warped bool
	m      f64.Aff3 // rotate(angle) * offset(-origin)
}

// NewFrame validates cfg and builds a Frame.
//
// Warp compensation needs a sample size: a fitted surface is only meaningful
// over the sample it was measured on.
func NewFrame(cfg FrameConfig) (*Frame, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"origin x", cfg.OriginX}, {"origin y", cfg.OriginY}, {"angle", cfg.Angle},
		{"sample x", cfg.SampleX}, {"sample y", cfg.SampleY},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return nil, errors.Configuration("%s must be finite, got %v", f.name, f.v)
		}
	}
	if cfg.SampleX < 0 || cfg.SampleY < 0 {
		return nil, errors.Configuration("sample size must be non-negative, got (%g, %g)", cfg.SampleX, cfg.SampleY)
	}
	f := &Frame{
		origin: f64.Vec2{cfg.OriginX, cfg.OriginY},
		angle:  cfg.Angle,
		sample: f64.Vec2{cfg.SampleX, cfg.SampleY},
		warp:   zeroWarp{},
	}
	if cfg.Warp != nil {
		if cfg.SampleX == 0 || cfg.SampleY == 0 {
			return nil, errors.Configuration("warp compensation requires a sample size, got (%g, %g)", cfg.SampleX, cfg.SampleY)
		}
		f.warp = cfg.Warp
		f.warped = true
	}
	f.m = mul(rotating(cfg.Angle), offsetting(f64.Vec2{-cfg.OriginX, -cfg.OriginY}))
	return f, nil
}

// Origin returns the new origin in raw coordinates.
func (f *Frame) Origin() (x, y float64) { return f.origin[0], f.origin[1] }

// Angle returns the in-plane rotation in radians.
func (f *Frame) Angle() float64 { return f.angle }

// SampleSize returns the sample bounding box.
func (f *Frame) SampleSize() (x, y float64) { return f.sample[0], f.sample[1] }

// Warped reports whether warp compensation is enabled.
func (f *Frame) Warped() bool { return f.warped }

// WarpAt evaluates the compensation surface at machine coordinates (x, y).
func (f *Frame) WarpAt(x, y float64) float64 { return f.warp.Eval(x, y) }
