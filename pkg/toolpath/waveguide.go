package toolpath

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
)

// Waveguide is a continuous written path built from chained moves.
//
//	wg, _ := toolpath.NewWaveguide(params)
//	wg.Start(-2, 0, 0.035).Linear(5, 0, 0).SinBend(0.08).Linear(5, 0, 0).End()
//	if err := wg.Err(); err != nil { ... }
type Waveguide struct {
	p     WaveguideParams
	tr    tracer
	ended bool
	err   error
}

// NewWaveguide returns an empty waveguide.
func NewWaveguide(p WaveguideParams) (*Waveguide, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Waveguide{p: p, tr: tracer{dl: p.DL()}}, nil
}

// WaveguideFromPoints wraps an already sampled path.
func WaveguideFromPoints(scan int, points []geometry.Point) (*Waveguide, error) {
	if scan < 1 {
		return nil, errors.InvalidArgument("scan must be at least 1, got %d", scan)
	}
	if len(points) == 0 {
		return nil, errors.InvalidArgument("waveguide needs at least one point")
	}
	p := DefaultWaveguideParams()
	p.Scan = scan
	pts := make([]geometry.Point, len(points))
	copy(pts, points)
	return &Waveguide{p: p, tr: tracer{dl: p.DL(), pts: pts}, ended: true}, nil
}

// Params returns the writing parameters.
func (w *Waveguide) Params() WaveguideParams { return w.p }

// Err returns the first error recorded by a move.
func (w *Waveguide) Err() error { return w.err }

// Start positions the stage a runway before (x, y, z) with the shutter
// closed, accelerates over the runway and opens the shutter at (x, y, z).
func (w *Waveguide) Start(x, y, z float64) *Waveguide {
	if w.err != nil {
		return w
	}
	if len(w.tr.pts) > 0 {
		w.err = errors.InvalidArgument("waveguide already started")
		return w
	}
	w.tr.travel(f64.Vec3{x - w.p.LVelo(), y, z}, w.p.SpeedPos)
	w.tr.line(f64.Vec3{x, y, z}, w.p.Speed)
	w.tr.shutter(geometry.ShutterOpen)
	return w
}

// Linear moves by (dx, dy, dz) in a straight line.
func (w *Waveguide) Linear(dx, dy, dz float64) *Waveguide {
	if !w.ready("linear") {
		return w
	}
	p, _ := w.tr.last()
	w.tr.line(f64.Vec3{p.X + dx, p.Y + dy, p.Z + dz}, w.p.Speed)
	return w
}

// CircBend shifts the guide by dy with two tangent circular arcs of the
// configured radius.
func (w *Waveguide) CircBend(dy float64) *Waveguide {
	if !w.ready("circ_bend") {
		return w
	}
	r := w.p.Radius
	if math.Abs(dy) > 2*r {
		w.err = errors.InvalidArgument("circ_bend offset %g exceeds twice the radius %g", dy, r)
		return w
	}
	theta := math.Acos(1 - math.Abs(dy)/(2*r))
	dx := 2 * r * math.Sin(theta)
	sign := 1.0
	if dy < 0 {
		sign = -1
	}
	fn := func(u float64) f64.Vec3 {
		if u <= 0.5 {
			phi := 2 * u * theta
			return f64.Vec3{r * math.Sin(phi), sign * r * (1 - math.Cos(phi)), 0}
		}
		phi := 2 * (1 - u) * theta
		return f64.Vec3{dx - r*math.Sin(phi), dy - sign*r*(1-math.Cos(phi)), 0}
	}
	w.tr.curve(fn, w.p.Speed)
	return w
}

// SinBend shifts the guide by dy along a raised cosine. The bend spans the
// same x distance as a circular S-bend of the configured radius.
func (w *Waveguide) SinBend(dy float64) *Waveguide {
	if !w.ready("sin_bend") {
		return w
	}
	dx, err := SBendSpan(dy, w.p.Radius)
	if err != nil {
		w.err = err
		return w
	}
	fn := func(u float64) f64.Vec3 {
		return f64.Vec3{dx * u, dy / 2 * (1 - math.Cos(math.Pi*u)), 0}
	}
	w.tr.curve(fn, w.p.Speed)
	return w
}

// SinMZI writes one arm of a Mach-Zehnder interferometer: a bend by dy, a
// straight arm and a bend back.
func (w *Waveguide) SinMZI(dy, arm float64) *Waveguide {
	return w.SinBend(dy).Linear(arm, 0, 0).SinBend(-dy)
}

// SplineBridge shifts the guide by dy along a smoothstep while lifting it by
// up to dz at mid-span and returning to the starting depth.
func (w *Waveguide) SplineBridge(dy, dz float64) *Waveguide {
	if !w.ready("spline_bridge") {
		return w
	}
	dx, err := SBendSpan(math.Max(math.Abs(dy), math.Abs(dz)), w.p.Radius)
	if err != nil {
		w.err = err
		return w
	}
	fn := func(u float64) f64.Vec3 {
		return f64.Vec3{dx * u, dy * u * u * (3 - 2*u), dz * 16 * u * u * (1 - u) * (1 - u)}
	}
	w.tr.curve(fn, w.p.Speed)
	return w
}

// End closes the shutter and decelerates over a runway.
func (w *Waveguide) End() *Waveguide {
	if !w.ready("end") {
		return w
	}
	w.tr.shutter(geometry.ShutterClosed)
	p, _ := w.tr.last()
	w.tr.line(f64.Vec3{p.X + w.p.LVelo(), p.Y, p.Z}, w.p.Speed)
	w.ended = true
	return w
}

func (w *Waveguide) ready(op string) bool {
	if w.err != nil {
		return false
	}
	if len(w.tr.pts) == 0 {
		w.err = errors.InvalidArgument("%s before start", op)
		return false
	}
	if w.ended {
		w.err = errors.InvalidArgument("%s after end", op)
		return false
	}
	return true
}

// Ended reports whether End was called.
func (w *Waveguide) Ended() bool { return w.ended }

// LastPoint returns the current end of the path.
func (w *Waveguide) LastPoint() (geometry.Point, bool) { return w.tr.last() }

// YAt returns the y coordinate of the written (shutter open) part of the
// guide at x. ok is false when the guide does not cover x.
func (w *Waveguide) YAt(x float64) (y float64, ok bool) {
	pts := w.Points()
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if b.S != geometry.ShutterOpen {
			continue
		}
		lo, hi := math.Min(a.X, b.X), math.Max(a.X, b.X)
		if x < lo || x > hi {
			continue
		}
		if hi == lo {
			return b.Y, true
		}
		t := (x - a.X) / (b.X - a.X)
		return a.Y + t*(b.Y-a.Y), true
	}
	return 0, false
}

// SBendSpan returns the x length of a circular S-bend shifting by dy.
func SBendSpan(dy, radius float64) (float64, error) {
	if math.Abs(dy) > 2*radius {
		return 0, errors.InvalidArgument("bend offset %g exceeds twice the radius %g", dy, radius)
	}
	theta := math.Acos(1 - math.Abs(dy)/(2*radius))
	return 2 * radius * math.Sin(theta), nil
}

func (w *Waveguide) Kind() Kind               { return KindWaveguide }
func (w *Waveguide) Points() []geometry.Point { return w.tr.points() }
func (w *Waveguide) Scan() int                { return w.p.Scan }
func (w *Waveguide) Settle() float64          { return w.p.Settle }
func (w *Waveguide) Duration() float64        { return duration(w.Points()) }
func (w *Waveguide) sealed()                  {}
