// Package warp models the focus-height compensation surface of a sample.
//
// A [Surface] is a bicubic polynomial fitted to focus heights measured on a
// square grid over the sample. It is a plain value: versioned, JSON
// serializable, and evaluated by the compiler through [Surface.Eval]. Fitting
// and persistence happen outside the compiler (the calibrate command and the
// surface cache).
package warp

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// Version is the current serialization version of Surface.
const Version = 1

// MinSamples is the minimum number of heights needed for a bicubic fit,
// (k+1)^2 with k = 3.
const MinSamples = 16

// DefaultMargin keeps calibration points away from the sample edges, mm.
const DefaultMargin = 2.0

// Sample is one measured focus height.
type Sample struct {
	X, Y float64 // position, mm
	Z    float64 // focus height, mm
}

// Surface is a fitted bicubic z = Σ a[i][j] u^i v^j with normalized
// coordinates u = (x-CX)/SX and v = (y-CY)/SY.
type Surface struct {
	Version int         `json:"version"`
	CX      float64     `json:"cx"`
	CY      float64     `json:"cy"`
	SX      float64     `json:"sx"`
	SY      float64     `json:"sy"`
	Coeffs  [16]float64 `json:"coeffs"`
}

// Eval returns the height offset at (x, y).
func (s Surface) Eval(x, y float64) float64 {
	u, v := (x-s.CX)/s.SX, (y-s.CY)/s.SY
	var z, ui float64 = 0, 1
	for i := 0; i < 4; i++ {
		vj := 1.0
		for j := 0; j < 4; j++ {
			z += s.Coeffs[i*4+j] * ui * vj
			vj *= v
		}
		ui *= u
	}
	return z
}

// Marshal encodes s as JSON.
func (s Surface) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes a surface and checks its version.
func Unmarshal(data []byte) (Surface, error) {
	var s Surface
	if err := json.Unmarshal(data, &s); err != nil {
		return Surface{}, fmt.Errorf("decode surface: %w", err)
	}
	if s.Version != Version {
		return Surface{}, errors.Configuration("unsupported surface version %d (want %d)", s.Version, Version)
	}
	if s.SX == 0 || s.SY == 0 {
		return Surface{}, errors.Configuration("surface has zero scale (%g, %g)", s.SX, s.SY)
	}
	return s, nil
}

// Grid returns the calibration positions for n samples on a sampleX by
// sampleY mm sample: ceil(sqrt(n)) positions per side, evenly spaced between
// margin and size-margin. Positions are ordered by x, then y.
func Grid(sampleX, sampleY float64, n int, margin float64) ([]Sample, error) {
	if n < MinSamples {
		return nil, errors.InvalidArgument("need at least %d calibration samples for a bicubic surface, got %d", MinSamples, n)
	}
	if sampleX <= 2*margin || sampleY <= 2*margin {
		return nil, errors.Configuration("sample size (%g, %g) leaves no room inside a %g mm margin", sampleX, sampleY, margin)
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	xs := linspace(margin, sampleX-margin, side)
	ys := linspace(margin, sampleY-margin, side)
	out := make([]Sample, 0, side*side)
	for _, x := range xs {
		for _, y := range ys {
			out = append(out, Sample{X: x, Y: y})
		}
	}
	return out, nil
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	return out
}
