package geometry

import (
	"math"

	"golang.org/x/image/math/f64"
)

func mul(A, B f64.Aff3) (r f64.Aff3) {
	r[0] = A[0]*B[0] + A[1]*B[3]
	r[1] = A[0]*B[1] + A[1]*B[4]
	r[2] = A[0]*B[2] + A[1]*B[5] + A[2]
	r[3] = A[3]*B[0] + A[4]*B[3]
	r[4] = A[3]*B[1] + A[4]*B[4]
	r[5] = A[3]*B[2] + A[4]*B[5] + A[5]
	return r
}

func offsetting(p f64.Vec2) f64.Aff3 {
	return f64.Aff3{
		1, 0, p[0],
		0, 1, p[1],
	}
}

func rotating(radians float64) f64.Aff3 {
	s, c := math.Sincos(radians)
	return f64.Aff3{
		c, -s, 0,
		s, c, 0,
	}
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return x*m[0] + y*m[1] + m[2], x*m[3] + y*m[4] + m[5]
}

// Apply maps a single raw point into the machine frame.
func (f *Frame) Apply(p Point) Point {
	p.X, p.Y = apply(f.m, p.X, p.Y)
	p.Z += f.warp.Eval(p.X, p.Y)
	return p
}

// Transform maps raw points into the machine frame: translate by the new
// origin, rotate by the frame angle, then add the warp offset evaluated at
// the transformed (x, y). The input slice is not modified.
func Transform(points []Point, f *Frame) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = f.Apply(p)
	}
	return out
}

// Inverse undoes Transform: the warp offset is removed, the rotation is
// reverted and the origin added back.
func Inverse(points []Point, f *Frame) []Point {
	inv := mul(offsetting(f.origin), rotating(-f.angle))
	out := make([]Point, len(points))
	for i, p := range points {
		p.Z -= f.warp.Eval(p.X, p.Y)
		p.X, p.Y = apply(inv, p.X, p.Y)
		out[i] = p
	}
	return out
}
