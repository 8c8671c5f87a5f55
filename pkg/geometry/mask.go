package geometry

import "math"

// NoDraw is the sentinel placed in masked coordinates. Plotting
// collaborators break the line at NaN samples.
var NoDraw = math.NaN()

// IsNoDraw reports whether v is the masking sentinel.
func IsNoDraw(v float64) bool {
	return math.IsNaN(v)
}

// Mask returns a copy of points where every sample whose shutter differs
// from state has Y and Z replaced by NoDraw. X is left untouched so the
// sequence keeps its length and order.
//
// state must be 0 or 1; anything else is an INVALID_ARGUMENT error.
func Mask(points []Point, state int) ([]Point, error) {
	s, err := ParseShutter(state)
	if err != nil {
		return nil, err
	}
	out := make([]Point, len(points))
	for i, p := range points {
		if p.S != s {
			p.Y = NoDraw
			p.Z = NoDraw
		}
		out[i] = p
	}
	return out, nil
}

// Transitions returns the indices i > 0 where points[i] changes shutter
// state relative to points[i-1].
func Transitions(points []Point) []int {
	var idx []int
	for i := 1; i < len(points); i++ {
		if points[i].S != points[i-1].S {
			idx = append(idx, i)
		}
	}
	return idx
}
