package geometry

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// Shutter is the binary beam-gating state.
type Shutter uint8

const (
	// ShutterClosed is travel-only motion.
	ShutterClosed Shutter = 0
	// ShutterOpen is material-modifying motion.
	ShutterOpen Shutter = 1
)

// ParseShutter converts an integer state to a Shutter.
// Anything other than 0 or 1 is an INVALID_ARGUMENT error.
func ParseShutter(v int) (Shutter, error) {
	switch v {
	case 0:
		return ShutterClosed, nil
	case 1:
		return ShutterOpen, nil
	}
	return 0, errors.InvalidArgument("shutter must be either OPEN (1) or CLOSE (0), got %d", v)
}

// String returns "open" or "closed".
func (s Shutter) String() string {
	if s == ShutterOpen {
		return "open"
	}
	return "closed"
}

// Point is one sampled tool position.
type Point struct {
	X, Y, Z float64
	F       float64 // feed rate in mm/s, 0 when unused
	S       Shutter
}

// Pos returns the spatial part of p.
func (p Point) Pos() f64.Vec3 {
	return f64.Vec3{p.X, p.Y, p.Z}
}

// SamePos reports whether p and q occupy the same position.
func (p Point) SamePos(q Point) bool {
	return p.X == q.X && p.Y == q.Y && p.Z == q.Z
}

// Distance returns the Euclidean distance between the positions of a and b.
func Distance(a, b Point) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Coalesce drops points identical in all five fields to their predecessor.
// Points that share a position but differ in shutter or feed are kept: they
// mark where the shutter toggles in place.
func Coalesce(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Length returns the summed segment length of points.
func Length(points []Point) float64 {
	var l float64
	for i := 1; i < len(points); i++ {
		l += Distance(points[i-1], points[i])
	}
	return l
}
