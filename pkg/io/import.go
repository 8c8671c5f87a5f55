package io

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/cell"
	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/pipeline"
	"github.com/matzehuels/femtopgm/pkg/toolpath"
)

// Job is a decoded job file: the program configuration and the populated
// cell.
type Job struct {
	Options pipeline.Options
	Cell    *cell.Cell
}

// ReadJob decodes a TOML job from r. ReadJob does not close r.
func ReadJob(r io.Reader) (*Job, error) {
	var jf jobFile
	md, err := toml.NewDecoder(r).Decode(&jf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "decode job")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.Configuration("unknown keys in job: %s", strings.Join(keys, ", "))
	}

	opts, err := jf.Program.options()
	if err != nil {
		return nil, err
	}
	c, err := jf.cell(opts.Filename)
	if err != nil {
		return nil, err
	}
	return &Job{Options: opts, Cell: c}, nil
}

// ImportJob reads the job file at path.
func ImportJob(path string) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	job, err := ReadJob(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

func (p programSection) options() (pipeline.Options, error) {
	o := pipeline.Options{
		Filename:   p.Filename,
		Lab:        p.Lab,
		Angle:      p.Angle,
		Warp:       p.Warp,
		LongPause:  p.LongPause,
		ShortPause: p.ShortPause,
		Digits:     p.OutputDigits,
	}
	if len(p.SampleSize) > 0 {
		if len(p.SampleSize) != 2 {
			return o, errors.Configuration("sample_size must be [x, y], got %v", p.SampleSize)
		}
		o.SampleX, o.SampleY = p.SampleSize[0], p.SampleSize[1]
	}
	if len(p.NewOrigin) > 0 {
		if len(p.NewOrigin) != 2 {
			return o, errors.Configuration("new_origin must be [x, y], got %v", p.NewOrigin)
		}
		o.OriginX, o.OriginY = p.NewOrigin[0], p.NewOrigin[1]
	}
	return o, nil
}

// cell builds objects in file order, groups them into bunches and cuts the
// trench columns.
func (jf *jobFile) cell(name string) (*cell.Cell, error) {
	g, err := newGrouper(jf.Bunches)
	if err != nil {
		return nil, err
	}
	for i, s := range jf.Waveguides {
		wg, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("waveguide %d: %w", i+1, err)
		}
		if err := g.add(wg, toolpath.KindWaveguide, s.Bunch); err != nil {
			return nil, fmt.Errorf("waveguide %d: %w", i+1, err)
		}
	}
	for i, s := range jf.Markers {
		m, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i+1, err)
		}
		if err := g.add(m, toolpath.KindMarker, s.Bunch); err != nil {
			return nil, fmt.Errorf("marker %d: %w", i+1, err)
		}
	}
	for i, s := range jf.Trenches {
		t, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("trench %d: %w", i+1, err)
		}
		if err := g.add(t, toolpath.KindTrench, s.Bunch); err != nil {
			return nil, fmt.Errorf("trench %d: %w", i+1, err)
		}
	}

	c := cell.New(name)
	top, err := g.build()
	if err != nil {
		return nil, err
	}
	if err := c.AddAll(top...); err != nil {
		return nil, err
	}

	wgs := c.Waveguides()
	for i, p := range jf.Columns {
		col, err := toolpath.NewTrenchColumn(p.params())
		if err != nil {
			return nil, fmt.Errorf("trench column %d: %w", i+1, err)
		}
		if err := col.Cut(wgs); err != nil {
			return nil, fmt.Errorf("trench column %d: %w", i+1, err)
		}
		if err := c.Add(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s waveguideSection) build() (*toolpath.Waveguide, error) {
	p := toolpath.DefaultWaveguideParams()
	override(&p.Scan, s.Scan)
	override(&p.Speed, s.Speed)
	override(&p.SpeedPos, s.SpeedPos)
	override(&p.Depth, s.Depth)
	override(&p.Radius, s.Radius)
	override(&p.Settle, s.Settle)
	override(&p.CmdRateMax, s.CmdRateMax)
	override(&p.AccMax, s.AccMax)
	wg, err := toolpath.NewWaveguide(p)
	if err != nil {
		return nil, err
	}
	switch len(s.Start) {
	case 2:
		wg.Start(s.Start[0], s.Start[1], wg.Params().Depth)
	case 3:
		wg.Start(s.Start[0], s.Start[1], s.Start[2])
	default:
		return nil, errors.Configuration("start must be [x, y] or [x, y, z], got %v", s.Start)
	}
	for i, m := range s.Moves {
		switch m.Kind {
		case "linear":
			if len(m.Increment) != 3 {
				return nil, errors.Configuration("move %d: increment must be [dx, dy, dz], got %v", i+1, m.Increment)
			}
			wg.Linear(m.Increment[0], m.Increment[1], m.Increment[2])
		case "circ_bend":
			wg.CircBend(m.DY)
		case "sin_bend":
			wg.SinBend(m.DY)
		case "sin_mzi":
			wg.SinMZI(m.DY, m.Arm)
		case "spline_bridge":
			wg.SplineBridge(m.DY, m.DZ)
		default:
			return nil, errors.Configuration("move %d: unknown kind %q", i+1, m.Kind)
		}
	}
	wg.End()
	if err := wg.Err(); err != nil {
		return nil, err
	}
	return wg, nil
}

func (s markerSection) build() (*toolpath.Marker, error) {
	if len(s.Position) != 2 {
		return nil, errors.Configuration("position must be [x, y], got %v", s.Position)
	}
	p := toolpath.DefaultMarkerParams()
	override(&p.Scan, s.Scan)
	override(&p.Speed, s.Speed)
	override(&p.SpeedPos, s.SpeedPos)
	override(&p.Depth, s.Depth)
	override(&p.LX, s.LX)
	override(&p.LY, s.LY)
	override(&p.CmdRateMax, s.CmdRateMax)
	return toolpath.NewCross(s.Position[0], s.Position[1], p)
}

func (s trenchSection) build() (*toolpath.Trench, error) {
	poly := make([]f64.Vec2, len(s.Polygon))
	for i, v := range s.Polygon {
		if len(v) != 2 {
			return nil, errors.Configuration("polygon vertex %d must be [x, y], got %v", i+1, v)
		}
		poly[i] = f64.Vec2{v[0], v[1]}
	}
	return toolpath.NewTrench(poly, s.params())
}

func (p trenchParams) params() toolpath.TrenchParams {
	tp := toolpath.DefaultTrenchParams()
	tp.XCenter, tp.YMin, tp.YMax = p.XCenter, p.YMin, p.YMax
	override(&tp.Bridge, p.Bridge)
	override(&tp.Length, p.Length)
	override(&tp.NBoxZ, p.NBoxZ)
	override(&tp.ZOff, p.ZOff)
	override(&tp.HBox, p.HBox)
	override(&tp.DeltaZ, p.DeltaZ)
	override(&tp.DeltaFloor, p.DeltaFloor)
	override(&tp.BeamWaist, p.BeamWaist)
	override(&tp.RoundCorner, p.RoundCorner)
	override(&tp.Speed, p.Speed)
	override(&tp.SpeedPos, p.SpeedPos)
	override(&tp.CmdRateMax, p.CmdRateMax)
	return tp
}
