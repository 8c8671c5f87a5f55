// Package pipeline compiles a cell into numeric-control programs.
//
// This package implements the complete transform → sample → emit → account
// pipeline that the CLI and tests use. Each object class present in the
// cell (waveguides, markers, trenches, and every trench column) becomes one
// self-contained program:
//
//	HEADER
//	DWELL long_pause
//	body (objects in insertion order, REPEAT blocks for scan > 1)
//	HOME
//
// Classes without objects are skipped. Programs are independent and may be
// compiled in parallel; they share only the read-only coordinate frame.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Compile(ctx, c, pipeline.Options{
//	    Filename: "chip",
//	    Lab:      "CAPABLE",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Programs {
//	    fmt.Println(p.Name, p.Seconds)
//	}
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/fabtime"
	"github.com/matzehuels/femtopgm/pkg/geometry"
	"github.com/matzehuels/femtopgm/pkg/pgm"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultLab is the writing station used when none is configured.
	DefaultLab = pgm.LabCapable

	// DefaultLongPause is the dwell at the start of every program [s].
	DefaultLongPause = pgm.DefaultLongPause

	// DefaultShortPause is the dwell between trench layers [s].
	DefaultShortPause = pgm.DefaultShortPause

	// DefaultDigits is the number of fractional digits in the output.
	DefaultDigits = pgm.DefaultDigits

	// Extension is the program file extension.
	Extension = ".pgm"
)

// =============================================================================
// Options - Compilation Configuration
// =============================================================================

// Options is the coordinate frame and output configuration of one
// compilation session.
type Options struct {
	Filename string  `json:"filename" toml:"filename"`
	Lab      string  `json:"lab,omitempty" toml:"lab"`
	SampleX  float64 `json:"sample_x,omitempty" toml:"-"`
	SampleY  float64 `json:"sample_y,omitempty" toml:"-"`
	OriginX  float64 `json:"origin_x,omitempty" toml:"-"`
	OriginY  float64 `json:"origin_y,omitempty" toml:"-"`
	Angle    float64 `json:"angle,omitempty" toml:"angle"`
	Warp     bool    `json:"warp,omitempty" toml:"warp"`

	// Nil takes the default; zero is a valid explicit value for all three.
	LongPause  *float64 `json:"long_pause,omitempty" toml:"long_pause"`
	ShortPause *float64 `json:"short_pause,omitempty" toml:"short_pause"`
	Digits     *int     `json:"output_digits,omitempty" toml:"output_digits"`

	// Parallel compiles the program classes concurrently.
	Parallel bool `json:"-" toml:"-"`

	// Runtime options (not serialized)
	Surface geometry.Warp `json:"-" toml:"-"` // required when Warp is set
	Logger  *log.Logger   `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a compilation.
type Result struct {
	// Session identifies this compilation in logs and the archive.
	Session string

	// Programs are in class order: WG, MARKERS, TRENCH, then one per
	// trench column.
	Programs []Program

	// Stats contains timing and size information.
	Stats Stats
}

// Program is one compiled, self-contained instruction program.
type Program struct {
	Class        pgm.Class
	Name         string // output file name
	Instructions []pgm.Instruction
	Seconds      float64 // estimated fabrication time
	Breakdown    fabtime.Breakdown
}

// Text renders the program.
func (p Program) Text() string {
	return pgm.Render(p.Instructions)
}

// Stats contains compilation statistics.
type Stats struct {
	Objects      int
	Programs     int
	Instructions int
	Seconds      float64
	CompileTime  time.Duration
}

// Program returns the program with the given file name.
func (r *Result) Program(name string) (Program, bool) {
	for _, p := range r.Programs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateStem(o.Filename); err != nil {
		return err
	}
	o.SetDefaults()
	lab, err := pgm.ParseLab(o.Lab)
	if err != nil {
		return err
	}
	o.Lab = string(lab)
	for _, v := range []float64{*o.LongPause, *o.ShortPause} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return errors.Configuration("pauses must be non-negative and finite, got long %g short %g", *o.LongPause, *o.ShortPause)
		}
	}
	if err := (pgm.Config{Lab: lab, Digits: *o.Digits}).Validate(); err != nil {
		return err
	}
	if o.Warp {
		if !(o.SampleX > 0) || !(o.SampleY > 0) {
			return errors.Configuration("sample size is required when warp is enabled, got (%g, %g)", o.SampleX, o.SampleY)
		}
		if o.Surface == nil {
			return errors.Configuration("warp is enabled but no compensation surface was supplied")
		}
	}
	for _, v := range []float64{o.SampleX, o.SampleY, o.OriginX, o.OriginY, o.Angle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Configuration("frame values must be finite, got %g", v)
		}
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields. Explicit zeros are kept.
func (o *Options) SetDefaults() {
	if o.Lab == "" {
		o.Lab = string(DefaultLab)
	}
	if o.LongPause == nil {
		o.LongPause = Float(DefaultLongPause)
	}
	if o.ShortPause == nil {
		o.ShortPause = Float(DefaultShortPause)
	}
	if o.Digits == nil {
		o.Digits = Int(DefaultDigits)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Frame builds the session's coordinate frame.
func (o *Options) Frame() (*geometry.Frame, error) {
	cfg := geometry.FrameConfig{
		OriginX: o.OriginX,
		OriginY: o.OriginY,
		Angle:   o.Angle,
		SampleX: o.SampleX,
		SampleY: o.SampleY,
	}
	if o.Warp {
		cfg.Warp = o.Surface
	}
	return geometry.NewFrame(cfg)
}

// Config returns the emitter configuration.
func (o *Options) Config() pgm.Config {
	return pgm.Config{Lab: pgm.Lab(o.Lab), Digits: *o.Digits}
}

// Float returns a pointer to v, for the optional Options fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for the optional Options fields.
func Int(v int) *int { return &v }

// ProgramName returns the output file name for a class. column is the
// 1-based trench column index, 0 for every other program.
func (o *Options) ProgramName(class pgm.Class, column int) string {
	if column > 0 {
		return fmt.Sprintf("%s_%s%02d%s", o.Filename, class, column, Extension)
	}
	return o.Filename + "_" + string(class) + Extension
}
