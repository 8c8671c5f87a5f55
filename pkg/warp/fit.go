package warp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// maxCond bounds the condition number of the design matrix.
const maxCond = 1e12

// Fit computes the least-squares bicubic surface through samples.
// It needs at least MinSamples heights spread over four distinct x and four
// distinct y positions.
func Fit(samples []Sample) (Surface, error) {
	if len(samples) < MinSamples {
		return Surface{}, errors.InvalidArgument("need at least %d calibration samples for a bicubic surface, got %d", MinSamples, len(samples))
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		if math.IsNaN(s.Z) || math.IsInf(s.Z, 0) {
			return Surface{}, errors.InvalidArgument("calibration height at (%g, %g) is not finite", s.X, s.Y)
		}
		minX, maxX = math.Min(minX, s.X), math.Max(maxX, s.X)
		minY, maxY = math.Min(minY, s.Y), math.Max(maxY, s.Y)
	}
	if distinct(samples, func(s Sample) float64 { return s.X }) < 4 ||
		distinct(samples, func(s Sample) float64 { return s.Y }) < 4 {
		return Surface{}, errors.InvalidArgument("calibration samples must cover at least 4 distinct x and 4 distinct y positions")
	}

	surf := Surface{
		Version: Version,
		CX:      (minX + maxX) / 2,
		CY:      (minY + maxY) / 2,
		SX:      (maxX - minX) / 2,
		SY:      (maxY - minY) / 2,
	}

	// Least squares over the 16 monomials, solved by QR on the design
	// matrix.
	a := mat.NewDense(len(samples), len(surf.Coeffs), nil)
	z := mat.NewVecDense(len(samples), nil)
	for i, s := range samples {
		row := monomials((s.X-surf.CX)/surf.SX, (s.Y-surf.CY)/surf.SY)
		a.SetRow(i, row[:])
		z.SetVec(i, s.Z)
	}
	var qr mat.QR
	qr.Factorize(a)
	if c := qr.Cond(); c > maxCond || math.IsNaN(c) {
		return Surface{}, errors.InvalidArgument("calibration samples do not determine a bicubic surface (condition number %.3g)", c)
	}
	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, z); err != nil {
		return Surface{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "calibration samples do not determine a bicubic surface")
	}
	for i := range surf.Coeffs {
		surf.Coeffs[i] = c.AtVec(i)
	}
	return surf, nil
}

func monomials(u, v float64) [16]float64 {
	var r [16]float64
	ui := 1.0
	for i := 0; i < 4; i++ {
		vj := 1.0
		for j := 0; j < 4; j++ {
			r[i*4+j] = ui * vj
			vj *= v
		}
		ui *= u
	}
	return r
}

func distinct(samples []Sample, coord func(Sample) float64) int {
	seen := make(map[float64]struct{})
	for _, s := range samples {
		seen[coord(s)] = struct{}{}
	}
	return len(seen)
}
