package pipeline

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/femtopgm/pkg/cell"
	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
	"github.com/matzehuels/femtopgm/pkg/observability"
	"github.com/matzehuels/femtopgm/pkg/pgm"
	"github.com/matzehuels/femtopgm/pkg/toolpath"
)

func twoPoint(t *testing.T, scan int, y float64) *toolpath.Waveguide {
	t.Helper()
	wg, err := toolpath.WaveguideFromPoints(scan, []geometry.Point{
		{X: 0, Y: y, Z: 0, F: 10, S: geometry.ShutterOpen},
		{X: 1, Y: y, Z: 0, F: 10, S: geometry.ShutterClosed},
	})
	if err != nil {
		t.Fatal(err)
	}
	return wg
}

func compile(t *testing.T, c *cell.Cell, opts Options) *Result {
	t.Helper()
	res, err := NewRunner(nil).Compile(context.Background(), c, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

func TestCompileTwoWaveguides(t *testing.T) {
	c := cell.New("chip")
	if err := c.AddAll(twoPoint(t, 1, 0), twoPoint(t, 1, 1)); err != nil {
		t.Fatal(err)
	}
	res := compile(t, c, Options{Filename: "chip", Lab: "CAPABLE"})

	if len(res.Programs) != 1 {
		t.Fatalf("programs = %d, want 1", len(res.Programs))
	}
	p := res.Programs[0]
	if p.Name != "chip_WG.pgm" || p.Class != pgm.ClassWaveguide {
		t.Errorf("program = %s (%s)", p.Name, p.Class)
	}
	counts := map[pgm.Kind]int{
		pgm.KindHeader:     1,
		pgm.KindDwell:      1,
		pgm.KindMove:       4,
		pgm.KindShutterOn:  2,
		pgm.KindShutterOff: 2,
		pgm.KindHome:       1,
	}
	for k, want := range counts {
		if got := pgm.Count(p.Instructions, k); got != want {
			t.Errorf("%s count = %d, want %d", k, got, want)
		}
	}
	if p.Instructions[0].Kind != pgm.KindHeader || p.Instructions[1].Kind != pgm.KindDwell {
		t.Errorf("program starts with %s, %s", p.Instructions[0].Kind, p.Instructions[1].Kind)
	}
	if last := p.Instructions[len(p.Instructions)-1]; last.Kind != pgm.KindHome {
		t.Errorf("program ends with %s", last.Kind)
	}

	// two written segments plus the travel between the guides
	want := DefaultLongPause + (1+math.Sqrt2+1)/10
	if math.Abs(p.Seconds-want) > 1e-9 {
		t.Errorf("Seconds = %g, want %g", p.Seconds, want)
	}
	if p.Breakdown.Shutter != 0 {
		t.Errorf("shutter overhead = %g, want 0", p.Breakdown.Shutter)
	}
	if res.Session == "" || res.Stats.Objects != 2 || res.Stats.Programs != 1 {
		t.Errorf("stats = %+v, session %q", res.Stats, res.Session)
	}
}

func TestCompileShutterTimeByLab(t *testing.T) {
	c := cell.New("chip")
	if err := c.AddAll(twoPoint(t, 1, 0), twoPoint(t, 1, 1)); err != nil {
		t.Fatal(err)
	}
	capable := compile(t, c, Options{Filename: "chip"}).Programs[0]
	diamond := compile(t, c, Options{Filename: "chip", Lab: "diamond"}).Programs[0]
	if got := diamond.Seconds - capable.Seconds; math.Abs(got-4*0.005) > 1e-9 {
		t.Errorf("DIAMOND overhead = %g, want %g", got, 4*0.005)
	}
	if !strings.Contains(diamond.Text(), "PSOCONTROL X ON\nDWELL 0.005000\n") {
		t.Error("DIAMOND program lacks the shutter settle dwell")
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	c := cell.New("chip")
	wp := toolpath.DefaultWaveguideParams()
	wp.Scan = 2
	wg, err := toolpath.NewWaveguide(wp)
	if err != nil {
		t.Fatal(err)
	}
	wg.Start(0, 0, 0.035).Linear(2, 0, 0).SinBend(0.1).Linear(2, 0, 0).End()
	m, err := toolpath.NewCross(1, 1, toolpath.DefaultMarkerParams())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.AddAll(wg, m); err != nil {
		t.Fatal(err)
	}
	opts := Options{Filename: "chip", OriginX: 1, Angle: 0.01}
	a := compile(t, c, opts)
	b := compile(t, c, opts)
	opts.Parallel = true
	par := compile(t, c, opts)

	if len(a.Programs) != 2 {
		t.Fatalf("programs = %d, want 2", len(a.Programs))
	}
	for i := range a.Programs {
		if a.Programs[i].Text() != b.Programs[i].Text() {
			t.Errorf("%s differs between runs", a.Programs[i].Name)
		}
		if a.Programs[i].Text() != par.Programs[i].Text() {
			t.Errorf("%s differs in parallel mode", a.Programs[i].Name)
		}
	}
	if a.Session == b.Session {
		t.Error("sessions should be unique")
	}
}

func TestCompileNestingDepth(t *testing.T) {
	inner, err := cell.NewBunch("inner", 2, twoPoint(t, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	outer, err := cell.NewBunch("outer", 3, inner, twoPoint(t, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	c := cell.New("chip")
	if err := c.Add(outer); err != nil {
		t.Fatalf("depth 2 rejected: %v", err)
	}
	res := compile(t, c, Options{Filename: "chip"})
	p := res.Programs[0]
	if got := pgm.Count(p.Instructions, pgm.KindRepeatBegin); got != 2 {
		t.Errorf("REPEAT count = %d, want 2", got)
	}
	if !strings.Contains(p.Text(), "REPEAT 3\n") || !strings.Contains(p.Text(), "REPEAT 2\n") {
		t.Errorf("missing repeat counts:\n%s", p.Text())
	}

	tooDeep, err := cell.NewBunch("top", 1, outer)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Add(tooDeep); !errors.Is(err, errors.ErrCodeStructure) {
		t.Fatalf("depth 3 Add error = %v, want STRUCTURE_ERROR", err)
	}
	_, err = CompileProgram(pgm.ClassWaveguide, []cell.Node{{Bunch: tooDeep}}, Options{Filename: "chip"})
	if !errors.Is(err, errors.ErrCodeStructure) {
		t.Fatalf("depth 3 compile error = %v, want STRUCTURE_ERROR", err)
	}
	if !strings.Contains(err.Error(), "depth 3") || !strings.Contains(err.Error(), "limit of 2") {
		t.Errorf("message %q does not name depth and limit", err)
	}
}

func TestCompileScanRepeat(t *testing.T) {
	c := cell.New("chip")
	if err := c.Add(twoPoint(t, 3, 0)); err != nil {
		t.Fatal(err)
	}
	p := compile(t, c, Options{Filename: "chip"}).Programs[0]
	if !strings.Contains(p.Text(), "REPEAT 3\n") || !strings.Contains(p.Text(), "ENDREPEAT\n") {
		t.Fatalf("missing repeat block:\n%s", p.Text())
	}
	// three passes of 0.1 s and two returns of 0.1 s
	if want := DefaultLongPause + 0.5; math.Abs(p.Seconds-want) > 1e-9 {
		t.Errorf("Seconds = %g, want %g", p.Seconds, want)
	}
}

func TestCompileClasses(t *testing.T) {
	c := cell.New("chip")
	var wgs []*toolpath.Waveguide
	for _, y := range []float64{0.1, 0.2} {
		wg, err := toolpath.NewWaveguide(toolpath.DefaultWaveguideParams())
		if err != nil {
			t.Fatal(err)
		}
		wg.Start(0, y, 0.035).Linear(4, 0, 0).End()
		wgs = append(wgs, wg)
	}
	m, _ := toolpath.NewCross(0, 1, toolpath.DefaultMarkerParams())
	tp := toolpath.DefaultTrenchParams()
	tp.XCenter, tp.YMin, tp.YMax = 2, 0, 0.3
	col, err := toolpath.NewTrenchColumn(tp)
	if err != nil {
		t.Fatal(err)
	}
	if err := col.Cut(wgs); err != nil {
		t.Fatal(err)
	}
	if err := c.AddAll(wgs[0], wgs[1], m, col); err != nil {
		t.Fatal(err)
	}

	res := compile(t, c, Options{Filename: "chip"})
	names := make([]string, len(res.Programs))
	for i, p := range res.Programs {
		names[i] = p.Name
	}
	if got := strings.Join(names, ","); got != "chip_WG.pgm,chip_MARKERS.pgm,chip_TRENCH01.pgm" {
		t.Fatalf("programs = %s", got)
	}
	trench, _ := res.Program("chip_TRENCH01.pgm")
	nbox := col.Params().NBoxZ
	if got, want := pgm.Count(trench.Instructions, pgm.KindDwell), 1+col.Len()*(nbox-1); got != want {
		t.Errorf("trench DWELL count = %d, want %d", got, want)
	}
	if !strings.Contains(trench.Text(), "DWELL 0.250000\n") {
		t.Error("trench program lacks the short pause between layers")
	}
}

type constWarp float64

func (w constWarp) Eval(float64, float64) float64 { return float64(w) }

func TestCompileFrame(t *testing.T) {
	wg, err := toolpath.WaveguideFromPoints(1, []geometry.Point{{X: 2, Y: 0, Z: 0.03, F: 1, S: geometry.ShutterOpen}})
	if err != nil {
		t.Fatal(err)
	}
	c := cell.New("chip")
	if err := c.Add(wg); err != nil {
		t.Fatal(err)
	}
	p := compile(t, c, Options{
		Filename: "chip",
		OriginX:  1,
		Angle:    math.Pi / 2,
		Warp:     true,
		SampleX:  10,
		SampleY:  10,
		Surface:  constWarp(0.01),
	}).Programs[0]
	if !strings.Contains(p.Text(), "LINEAR X0.000000 Y1.000000 Z0.040000 F1.000000\n") {
		t.Errorf("transformed move missing:\n%s", p.Text())
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing stem", Options{}},
		{"traversal", Options{Filename: "../chip"}},
		{"bad lab", Options{Filename: "chip", Lab: "moon"}},
		{"negative pause", Options{Filename: "chip", LongPause: Float(-1)}},
		{"NaN short pause", Options{Filename: "chip", ShortPause: Float(math.NaN())}},
		{"warp without sample", Options{Filename: "chip", Warp: true, Surface: constWarp(0)}},
		{"warp without surface", Options{Filename: "chip", Warp: true, SampleX: 1, SampleY: 1}},
		{"digits", Options{Filename: "chip", Digits: Int(40)}},
		{"negative digits", Options{Filename: "chip", Digits: Int(-1)}},
		{"angle", Options{Filename: "chip", Angle: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil).Compile(context.Background(), cell.New("chip"), tt.opts)
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Fatalf("error = %v, want CONFIGURATION_ERROR", err)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Filename: "chip", Lab: "fire"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Lab != "FIRE" || *o.LongPause != 0.5 || *o.ShortPause != 0.25 || *o.Digits != 6 || o.Logger == nil {
		t.Errorf("defaults = %+v", o)
	}
	o.Lab = "moon"
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
	if got := o.ProgramName(pgm.ClassTrench, 3); got != "chip_TRENCH03.pgm" {
		t.Errorf("ProgramName = %q", got)
	}
}

func TestOptionsKeepExplicitZeros(t *testing.T) {
	o := Options{Filename: "chip", LongPause: Float(0), ShortPause: Float(0), Digits: Int(0)}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if *o.LongPause != 0 || *o.ShortPause != 0 || *o.Digits != 0 {
		t.Fatalf("explicit zeros replaced: long %g short %g digits %d", *o.LongPause, *o.ShortPause, *o.Digits)
	}

	c := cell.New("chip")
	if err := c.Add(twoPoint(t, 1, 0)); err != nil {
		t.Fatal(err)
	}
	text := compile(t, c, o).Programs[0].Text()
	for _, want := range []string{"DWELL 0\n", "LINEAR X0 Y0 Z0 F10\n", "LINEAR X1 Y0 Z0 F10\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("program lacks %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, ".000000") {
		t.Errorf("program uses default precision:\n%s", text)
	}
}

func TestCompileEmptyCell(t *testing.T) {
	res := compile(t, cell.New("chip"), Options{Filename: "chip"})
	if len(res.Programs) != 0 {
		t.Errorf("programs = %d, want 0", len(res.Programs))
	}
}

type recordingHooks struct {
	observability.NoopCompileHooks
	mu       sync.Mutex
	programs []string
	done     int
}

func (h *recordingHooks) OnProgramComplete(_ context.Context, class string, _ int, _ float64, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.programs = append(h.programs, class)
}

func (h *recordingHooks) OnCompileComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done++
}

func TestCompileHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetCompileHooks(h)
	defer observability.Reset()

	c := cell.New("chip")
	m, _ := toolpath.NewCross(0, 0, toolpath.DefaultMarkerParams())
	if err := c.AddAll(twoPoint(t, 1, 0), m); err != nil {
		t.Fatal(err)
	}
	compile(t, c, Options{Filename: "chip"})
	if len(h.programs) != 2 || h.done != 1 {
		t.Errorf("hooks saw programs %v, completions %d", h.programs, h.done)
	}
}
