package toolpath

import (
	"math"
	"sort"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
)

// Trench is a closed polygon written as stacked boundary passes, the last
// of which also fills the polygon.
type Trench struct {
	p      TrenchParams
	poly   []f64.Vec2
	layers [][]geometry.Point
}

// NewTrench builds a trench from a polygon given in drawing order. The ring
// is closed implicitly.
func NewTrench(polygon []f64.Vec2, p TrenchParams) (*Trench, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(polygon) < 3 {
		return nil, errors.InvalidArgument("trench polygon needs at least 3 vertices, got %d", len(polygon))
	}
	for i, v := range polygon {
		if math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsInf(v[0], 0) || math.IsInf(v[1], 0) {
			return nil, errors.InvalidArgument("trench vertex %d is not finite: (%g, %g)", i, v[0], v[1])
		}
	}
	if a := area(polygon); math.Abs(a) < 1e-12 {
		return nil, errors.InvalidArgument("trench polygon has zero area")
	}
	poly := make([]f64.Vec2, len(polygon))
	copy(poly, polygon)

	t := &Trench{p: p, poly: poly}
	zs := p.LayerDepths()
	for i, z := range zs {
		tr := tracer{dl: p.DL()}
		t.boundary(&tr, z)
		if i == len(zs)-1 {
			t.fill(&tr, z)
		}
		t.layers = append(t.layers, tr.points())
	}
	return t, nil
}

// Rect returns a trench for the axis-aligned rectangle [x0, x1] x [y0, y1].
func Rect(x0, y0, x1, y1 float64, p TrenchParams) (*Trench, error) {
	return NewTrench([]f64.Vec2{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}, p)
}

// Params returns the trench parameters.
func (t *Trench) Params() TrenchParams { return t.p }

// Polygon returns a copy of the boundary vertices.
func (t *Trench) Polygon() []f64.Vec2 {
	out := make([]f64.Vec2, len(t.poly))
	copy(out, t.poly)
	return out
}

// Layers returns the point sequence of every pass, top to bottom.
func (t *Trench) Layers() [][]geometry.Point {
	out := make([][]geometry.Point, len(t.layers))
	for i, l := range t.layers {
		out[i] = append([]geometry.Point(nil), l...)
	}
	return out
}

// Bounds returns the bounding box of the polygon.
func (t *Trench) Bounds() (min, max f64.Vec2) {
	min, max = t.poly[0], t.poly[0]
	for _, v := range t.poly[1:] {
		min[0], min[1] = math.Min(min[0], v[0]), math.Min(min[1], v[1])
		max[0], max[1] = math.Max(max[0], v[0]), math.Max(max[1], v[1])
	}
	return min, max
}

func (t *Trench) boundary(tr *tracer, z float64) {
	v0 := t.poly[0]
	tr.travel(f64.Vec3{v0[0], v0[1], z}, t.p.SpeedPos)
	tr.shutter(geometry.ShutterOpen)
	for i := 1; i <= len(t.poly); i++ {
		v := t.poly[i%len(t.poly)]
		tr.line(f64.Vec3{v[0], v[1], z}, t.p.Speed)
	}
	tr.shutter(geometry.ShutterClosed)
}

// fill rasters the polygon interior with horizontal lines at BeamWaist
// pitch, alternating direction.
func (t *Trench) fill(tr *tracer, z float64) {
	lo, hi := t.Bounds()
	pitch := t.p.BeamWaist
	forward := true
	for y := lo[1] + pitch/2; y < hi[1]; y += pitch {
		xs := t.crossings(y)
		if !forward {
			sort.Sort(sort.Reverse(sort.Float64Slice(xs)))
		}
		for i := 0; i+1 < len(xs); i += 2 {
			tr.travel(f64.Vec3{xs[i], y, z}, t.p.SpeedPos)
			tr.shutter(geometry.ShutterOpen)
			tr.line(f64.Vec3{xs[i+1], y, z}, t.p.Speed)
			tr.shutter(geometry.ShutterClosed)
		}
		forward = !forward
	}
}

// crossings returns the sorted x coordinates where the scanline y crosses
// the boundary, using a half-open rule on edge endpoints.
func (t *Trench) crossings(y float64) []float64 {
	var xs []float64
	n := len(t.poly)
	for i := range n {
		a, b := t.poly[i], t.poly[(i+1)%n]
		if (a[1] <= y) == (b[1] <= y) {
			continue
		}
		xs = append(xs, a[0]+(y-a[1])*(b[0]-a[0])/(b[1]-a[1]))
	}
	sort.Float64s(xs)
	return xs
}

func area(poly []f64.Vec2) float64 {
	var s float64
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		s += a[0]*b[1] - b[0]*a[1]
	}
	return s / 2
}

func (t *Trench) Kind() Kind { return KindTrench }

// Points returns all passes concatenated.
func (t *Trench) Points() []geometry.Point {
	var out []geometry.Point
	for _, l := range t.layers {
		out = append(out, l...)
	}
	return out
}

// Scan is always 1; the stacked layers are the repeated passes.
func (t *Trench) Scan() int         { return 1 }
func (t *Trench) Settle() float64   { return 0 }
func (t *Trench) Duration() float64 { return duration(t.Points()) }
func (t *Trench) sealed()           {}
