package toolpath

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/fabtime"
	"github.com/matzehuels/femtopgm/pkg/geometry"
)

// Kind identifies the variant of a path object.
type Kind int

const (
	KindWaveguide Kind = iota
	KindMarker
	KindTrench
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindWaveguide:
		return "waveguide"
	case KindMarker:
		return "marker"
	case KindTrench:
		return "trench"
	}
	return "unknown"
}

// Object is a sampleable, timeable path object. The set of implementations
// is closed: Waveguide, Marker and Trench.
type Object interface {
	Kind() Kind
	// Points returns the raw, untransformed samples with consecutive
	// duplicates removed.
	Points() []geometry.Point
	// Scan is the number of times the object is written.
	Scan() int
	// Settle is a dwell in seconds before the object starts, 0 for none.
	Settle() float64
	// Duration estimates one pass over Points in seconds.
	Duration() float64

	sealed()
}

// tracer accumulates points with a maximum spacing of dl.
type tracer struct {
	dl  float64
	pts []geometry.Point
}

func (t *tracer) last() (geometry.Point, bool) {
	if len(t.pts) == 0 {
		return geometry.Point{}, false
	}
	return t.pts[len(t.pts)-1], true
}

// travel appends a closed-shutter point at feed.
func (t *tracer) travel(pos f64.Vec3, feed float64) {
	t.pts = append(t.pts, geometry.Point{X: pos[0], Y: pos[1], Z: pos[2], F: feed, S: geometry.ShutterClosed})
}

// shutter repeats the last point with a new shutter state.
func (t *tracer) shutter(s geometry.Shutter) {
	p, ok := t.last()
	if !ok {
		return
	}
	p.S = s
	t.pts = append(t.pts, p)
}

// curve samples fn over ]0, 1] from the last point. fn returns offsets
// relative to the last point.
func (t *tracer) curve(fn func(u float64) f64.Vec3, feed float64) {
	p0, ok := t.last()
	if !ok {
		return
	}
	n := steps(extent(fn), t.dl)
	for i := 1; i <= n; i++ {
		d := fn(float64(i) / float64(n))
		t.pts = append(t.pts, geometry.Point{X: p0.X + d[0], Y: p0.Y + d[1], Z: p0.Z + d[2], F: feed, S: p0.S})
	}
}

// line samples a straight segment to the absolute position to.
func (t *tracer) line(to f64.Vec3, feed float64) {
	p0, ok := t.last()
	if !ok {
		return
	}
	d := f64.Vec3{to[0] - p0.X, to[1] - p0.Y, to[2] - p0.Z}
	t.curve(func(u float64) f64.Vec3 {
		return f64.Vec3{d[0] * u, d[1] * u, d[2] * u}
	}, feed)
}

// points returns a coalesced copy.
func (t *tracer) points() []geometry.Point {
	return geometry.Coalesce(t.pts)
}

// steps returns the number of equal steps needed to keep the spacing at or
// below dl. Zero-length curves take one step.
func steps(length, dl float64) int {
	if length <= 0 || dl <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(length/dl-1e-9)))
}

// extent bounds the parametric speed of fn over [0, 1] from 256 chords.
// Sampling with ceil(extent/dl) equal steps keeps every chord within dl.
// For a constant-speed curve it equals the arc length.
func extent(fn func(u float64) f64.Vec3) float64 {
	const n = 256
	var m float64
	prev := fn(0)
	for i := 1; i <= n; i++ {
		cur := fn(float64(i) / n)
		m = math.Max(m, norm(f64.Vec3{cur[0] - prev[0], cur[1] - prev[1], cur[2] - prev[2]}))
		prev = cur
	}
	return m * n
}

func norm(v f64.Vec3) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func duration(points []geometry.Point) float64 {
	return fabtime.PathSeconds(points)
}
