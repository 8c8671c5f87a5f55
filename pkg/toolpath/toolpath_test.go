package toolpath

import (
	"math"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func newWaveguide(t *testing.T) *Waveguide {
	t.Helper()
	wg, err := NewWaveguide(DefaultWaveguideParams())
	if err != nil {
		t.Fatalf("NewWaveguide: %v", err)
	}
	return wg
}

// checkSpacing checks the spacing of written segments.
func checkSpacing(t *testing.T, pts []geometry.Point, dl float64) {
	t.Helper()
	for i := 1; i < len(pts); i++ {
		if pts[i].S != geometry.ShutterOpen {
			continue
		}
		if d := geometry.Distance(pts[i-1], pts[i]); d > dl*(1+1e-3) {
			t.Fatalf("points %d-%d are %g apart, dl = %g", i-1, i, d, dl)
		}
	}
}

func TestWaveguideParams(t *testing.T) {
	p := DefaultWaveguideParams()
	if !near(p.DL(), 20.0/1200, 1e-12) {
		t.Errorf("DL = %g", p.DL())
	}
	if !near(p.LVelo(), 1.2, 1e-12) {
		t.Errorf("LVelo = %g, want 1.2", p.LVelo())
	}
	tests := []struct {
		name string
		set  func(*WaveguideParams)
	}{
		{"zero scan", func(p *WaveguideParams) { p.Scan = 0 }},
		{"negative scan", func(p *WaveguideParams) { p.Scan = -1 }},
		{"zero speed", func(p *WaveguideParams) { p.Speed = 0 }},
		{"negative speed", func(p *WaveguideParams) { p.Speed = -3 }},
		{"infinite radius", func(p *WaveguideParams) { p.Radius = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultWaveguideParams()
			tt.set(&p)
			if _, err := NewWaveguide(p); !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("NewWaveguide(%+v) error = %v, want INVALID_ARGUMENT", p, err)
			}
		})
	}
}

func TestParamsKeepExplicitZeros(t *testing.T) {
	wp := DefaultWaveguideParams()
	wp.Depth = 0
	wg, err := NewWaveguide(wp)
	if err != nil {
		t.Fatal(err)
	}
	if got := wg.Params().Depth; got != 0 {
		t.Errorf("waveguide depth = %g, want 0", got)
	}

	mp := DefaultMarkerParams()
	mp.Depth = 0
	m, err := NewCross(1, 1, mp)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range m.Points() {
		if p.Z != 0 {
			t.Fatalf("surface marker point %+v has z != 0", p)
		}
	}

	tp := DefaultTrenchParams()
	tp.ZOff = 0
	tp.RoundCorner = 0
	col, err := NewTrenchColumn(withColumn(tp, 5, 0, 0.3))
	if err != nil {
		t.Fatal(err)
	}
	if got := col.Params(); got.ZOff != 0 || got.RoundCorner != 0 {
		t.Errorf("column params = %+v, want zero z_off and round_corner", got)
	}
}

func TestMarkerParamsInvalid(t *testing.T) {
	tests := []struct {
		name string
		set  func(*MarkerParams)
	}{
		{"zero scan", func(p *MarkerParams) { p.Scan = 0 }},
		{"zero lx", func(p *MarkerParams) { p.LX = 0 }},
		{"negative speed", func(p *MarkerParams) { p.Speed = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultMarkerParams()
			tt.set(&p)
			if _, err := NewCross(0, 0, p); !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("NewCross error = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestTrenchParamsInvalid(t *testing.T) {
	tests := []struct {
		name string
		set  func(*TrenchParams)
	}{
		{"zero nboxz", func(p *TrenchParams) { p.NBoxZ = 0 }},
		{"negative deltaz", func(p *TrenchParams) { p.DeltaZ = -0.001 }},
		{"zero deltaz", func(p *TrenchParams) { p.DeltaZ = 0 }},
		{"negative delta_floor", func(p *TrenchParams) { p.DeltaFloor = -0.001 }},
		{"zero h_box", func(p *TrenchParams) { p.HBox = 0 }},
		{"negative bridge", func(p *TrenchParams) { p.Bridge = -0.01 }},
		{"NaN z_off", func(p *TrenchParams) { p.ZOff = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultTrenchParams()
			tt.set(&p)
			if _, err := Rect(0, 0, 1, 0.1, p); !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("Rect error = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func withColumn(p TrenchParams, x, ymin, ymax float64) TrenchParams {
	p.XCenter, p.YMin, p.YMax = x, ymin, ymax
	return p
}

func TestWaveguideStartEnd(t *testing.T) {
	wg := newWaveguide(t)
	wg.Start(0, 1, 0.035).Linear(2, 0, 0).End()
	if err := wg.Err(); err != nil {
		t.Fatal(err)
	}
	pts := wg.Points()
	lv := wg.Params().LVelo()

	first, last := pts[0], pts[len(pts)-1]
	if !near(first.X, -lv, 1e-12) || first.S != geometry.ShutterClosed || first.F != wg.Params().SpeedPos {
		t.Errorf("first point = %+v, want closed runway start at x=%g", first, -lv)
	}
	if !near(last.X, 2+lv, 1e-9) || last.S != geometry.ShutterClosed {
		t.Errorf("last point = %+v, want closed runway end at x=%g", last, 2+lv)
	}
	if got := geometry.Transitions(pts); len(got) != 2 {
		t.Fatalf("transitions = %v, want 2", got)
	}
	tr := geometry.Transitions(pts)
	if open := pts[tr[0]]; open.X != 0 || open.S != geometry.ShutterOpen {
		t.Errorf("shutter opens at %+v, want x=0", open)
	}
	if closed := pts[tr[1]]; !near(closed.X, 2, 1e-9) {
		t.Errorf("shutter closes at %+v, want x=2", closed)
	}
	checkSpacing(t, pts, wg.Params().DL())
	if !wg.Ended() {
		t.Error("Ended = false")
	}
}

func TestWaveguideBends(t *testing.T) {
	r := DefaultWaveguideParams().Radius
	span, err := SBendSpan(0.08, r)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		build func(w *Waveguide)
		dx    float64
		dy    float64
	}{
		{"circ up", func(w *Waveguide) { w.CircBend(0.08) }, span, 0.08},
		{"circ down", func(w *Waveguide) { w.CircBend(-0.08) }, span, -0.08},
		{"sin", func(w *Waveguide) { w.SinBend(0.08) }, span, 0.08},
		{"mzi", func(w *Waveguide) { w.SinMZI(0.08, 1) }, 2*span + 1, 0},
		{"bridge", func(w *Waveguide) { w.SplineBridge(0.08, 0.01) }, span, 0.08},
		{"zero linear", func(w *Waveguide) { w.Linear(0, 0, 0) }, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wg := newWaveguide(t)
			wg.Start(0, 0, 0.035)
			before := len(wg.Points())
			tt.build(wg)
			if err := wg.Err(); err != nil {
				t.Fatal(err)
			}
			end, _ := wg.LastPoint()
			if !near(end.X, tt.dx, 1e-9) || !near(end.Y, tt.dy, 1e-9) || !near(end.Z, 0.035, 1e-12) {
				t.Errorf("end = (%g, %g, %g), want (%g, %g, 0.035)", end.X, end.Y, end.Z, tt.dx, tt.dy)
			}
			pts := wg.Points()
			if tt.dx == 0 && len(pts) != before {
				t.Errorf("zero-length move added %d points", len(pts)-before)
			}
			checkSpacing(t, pts, wg.Params().DL())
			for _, p := range pts[before:] {
				if p.S != geometry.ShutterOpen {
					t.Fatalf("bend point %+v is not written", p)
				}
			}
		})
	}
}

func TestSplineBridgeLifts(t *testing.T) {
	wg := newWaveguide(t)
	wg.Start(0, 0, 0.035).SplineBridge(0.08, 0.01)
	top := 0.0
	for _, p := range wg.Points() {
		top = math.Max(top, p.Z)
	}
	if !near(top, 0.045, 1e-4) {
		t.Errorf("bridge top z = %g, want 0.045", top)
	}
}

func TestWaveguideMisuse(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *Waveguide)
	}{
		{"linear before start", func(w *Waveguide) { w.Linear(1, 0, 0) }},
		{"start twice", func(w *Waveguide) { w.Start(0, 0, 0).Start(1, 0, 0) }},
		{"after end", func(w *Waveguide) { w.Start(0, 0, 0).End().Linear(1, 0, 0) }},
		{"bend too tight", func(w *Waveguide) { w.Start(0, 0, 0).CircBend(100) }},
		{"sin too tight", func(w *Waveguide) { w.Start(0, 0, 0).SinBend(-100) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wg := newWaveguide(t)
			tt.build(wg)
			if !errors.Is(wg.Err(), errors.ErrCodeInvalidArgument) {
				t.Fatalf("Err = %v, want INVALID_ARGUMENT", wg.Err())
			}
		})
	}
}

func TestYAt(t *testing.T) {
	wg := newWaveguide(t)
	wg.Start(0, 1, 0.035).Linear(2, 0, 0).SinBend(0.1).Linear(2, 0, 0).End()
	if err := wg.Err(); err != nil {
		t.Fatal(err)
	}
	span, _ := SBendSpan(0.1, wg.Params().Radius)
	tests := []struct {
		x    float64
		want float64
		ok   bool
	}{
		{1, 1, true},
		{2 + span/2, 1.05, true},
		{3 + span, 1.1, true},
		{-0.5, 0, false},
		{100, 0, false},
	}
	for _, tt := range tests {
		y, ok := wg.YAt(tt.x)
		if ok != tt.ok || (ok && !near(y, tt.want, 1e-5)) {
			t.Errorf("YAt(%g) = %g, %v, want %g, %v", tt.x, y, ok, tt.want, tt.ok)
		}
	}
}

func TestWaveguideFromPoints(t *testing.T) {
	src := []geometry.Point{{X: 0, F: 1, S: 1}, {X: 1, F: 1, S: 0}}
	wg, err := WaveguideFromPoints(2, src)
	if err != nil {
		t.Fatal(err)
	}
	src[0].X = 99
	if wg.Points()[0].X != 0 || wg.Scan() != 2 {
		t.Errorf("points = %+v, scan = %d", wg.Points(), wg.Scan())
	}
	if _, err := WaveguideFromPoints(0, src); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("scan 0 error = %v", err)
	}
	if _, err := WaveguideFromPoints(1, nil); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("no points error = %v", err)
	}
}

func TestCross(t *testing.T) {
	m, err := NewCross(5, 5, DefaultMarkerParams())
	if err != nil {
		t.Fatal(err)
	}
	pts := m.Points()
	if got := len(geometry.Transitions(pts)); got != 4 {
		t.Fatalf("transitions = %d, want 4", got)
	}
	written, _ := geometry.Mask(pts, int(geometry.ShutterOpen))
	minX, maxX, minY, maxY := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, p := range written {
		if geometry.IsNoDraw(p.Y) {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	lx, ly := m.Params().LX, m.Params().LY
	if !near(maxX-minX, lx, 1e-9) || !near(maxY-minY, ly, 1e-9) {
		t.Errorf("cross extent = %g x %g, want %g x %g", maxX-minX, maxY-minY, lx, ly)
	}
	if m.Kind() != KindMarker || m.Scan() != 1 {
		t.Errorf("kind = %v, scan = %d", m.Kind(), m.Scan())
	}
}

func TestTrenchLayers(t *testing.T) {
	p := DefaultTrenchParams()
	zs := p.LayerDepths()
	want := []float64{0.055, 0.0535, 0.052, 0.0525}
	want[3] = want[2] - p.DeltaFloor
	if len(zs) != len(want) {
		t.Fatalf("LayerDepths = %v", zs)
	}
	for i := range zs {
		if !near(zs[i], want[i], 1e-12) {
			t.Errorf("z[%d] = %g, want %g", i, zs[i], want[i])
		}
	}

	tr, err := Rect(0, 0, 0.2, 0.05, p)
	if err != nil {
		t.Fatal(err)
	}
	layers := tr.Layers()
	if len(layers) != p.NBoxZ {
		t.Fatalf("layers = %d, want %d", len(layers), p.NBoxZ)
	}
	for i, l := range layers {
		for _, pt := range l {
			if pt.Z != zs[i] {
				t.Fatalf("layer %d has z = %g, want %g", i, pt.Z, zs[i])
			}
		}
		checkSpacing(t, l, p.DL())
	}
	if len(layers[3]) <= len(layers[0]) {
		t.Errorf("floor layer has %d points, wall layer %d", len(layers[3]), len(layers[0]))
	}
	// one boundary pass per wall layer, boundary plus raster lines on the floor
	rows := 0
	for y := p.BeamWaist / 2; y < 0.05; y += p.BeamWaist {
		rows++
	}
	if got := len(geometry.Transitions(layers[3])); got != 2+2*rows {
		t.Errorf("floor transitions = %d, want %d", got, 2+2*rows)
	}
	if got := len(tr.Points()); got != len(layers[0])+len(layers[1])+len(layers[2])+len(layers[3]) {
		t.Errorf("Points has %d entries", got)
	}
}

func TestTrenchFillTriangle(t *testing.T) {
	p := DefaultTrenchParams()
	p.NBoxZ = 1
	tr, err := NewTrench([]f64.Vec2{{0, 0}, {0.1, 0}, {0, 0.1}}, p)
	if err != nil {
		t.Fatal(err)
	}
	written, _ := geometry.Mask(tr.Layers()[0], int(geometry.ShutterOpen))
	for _, pt := range written {
		if geometry.IsNoDraw(pt.Y) {
			continue
		}
		if pt.X+pt.Y > 0.1+1e-9 || pt.X < -1e-9 || pt.Y < -1e-9 {
			t.Fatalf("written point (%g, %g) outside the triangle", pt.X, pt.Y)
		}
	}
}

func TestTrenchErrors(t *testing.T) {
	p := DefaultTrenchParams()
	polys := [][]f64.Vec2{
		{{0, 0}, {1, 0}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 0}, {1, math.NaN()}, {0, 1}},
	}
	for i, poly := range polys {
		if _, err := NewTrench(poly, p); !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("polygon %d error = %v", i, err)
		}
	}
}

func TestTrenchColumnCut(t *testing.T) {
	var wgs []*Waveguide
	for _, y := range []float64{0.2, 0.1} {
		wg := newWaveguide(t)
		wg.Start(0, y, 0.035).Linear(10, 0, 0).End()
		wgs = append(wgs, wg)
	}
	// Outside the column window.
	far := newWaveguide(t)
	far.Start(0, 5, 0.035).Linear(10, 0, 0).End()
	wgs = append(wgs, far)

	p := withColumn(DefaultTrenchParams(), 5, 0, 0.3)
	col, err := NewTrenchColumn(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := col.Cut(wgs); err != nil {
		t.Fatal(err)
	}
	if col.Len() != 3 {
		t.Fatalf("trenches = %d, want 3", col.Len())
	}
	adj := col.Params().AdjBridge()
	lo, hi := col.Trenches()[1].Bounds()
	if !near(lo[1], 0.1+adj, 1e-9) || !near(hi[1], 0.2-adj, 1e-9) {
		t.Errorf("middle trench y = [%g, %g], want [%g, %g]", lo[1], hi[1], 0.1+adj, 0.2-adj)
	}
	if !near(lo[0], 4.5, 1e-12) || !near(hi[0], 5.5, 1e-12) {
		t.Errorf("middle trench x = [%g, %g], want [4.5, 5.5]", lo[0], hi[0])
	}

	// Guides too close leave no room for a trench between them.
	tight := newWaveguide(t)
	tight.Start(0, 0.105, 0.035).Linear(10, 0, 0).End()
	if err := col.Cut([]*Waveguide{wgs[1], tight}); err != nil {
		t.Fatal(err)
	}
	if col.Len() != 2 {
		t.Errorf("trenches with a tight gap = %d, want 2", col.Len())
	}

	if _, err := NewTrenchColumn(withColumn(DefaultTrenchParams(), 0, 1, 1)); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("empty column error = %v", err)
	}
}

func TestObjectKinds(t *testing.T) {
	wg := newWaveguide(t)
	wg.Start(0, 0, 0).Linear(1, 0, 0).End()
	tr, _ := Rect(0, 0, 1, 0.1, DefaultTrenchParams())
	m, _ := NewCross(0, 0, DefaultMarkerParams())
	objs := []Object{wg, m, tr}
	want := []Kind{KindWaveguide, KindMarker, KindTrench}
	for i, o := range objs {
		if o.Kind() != want[i] {
			t.Errorf("object %d kind = %v, want %v", i, o.Kind(), want[i])
		}
		if o.Duration() <= 0 {
			t.Errorf("%v duration = %g", o.Kind(), o.Duration())
		}
	}
}
