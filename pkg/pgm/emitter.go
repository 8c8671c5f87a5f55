package pgm

import (
	"math"
	"strings"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
)

// Default output settings.
const (
	DefaultDigits     = 6
	DefaultLongPause  = 0.5
	DefaultShortPause = 0.25
	MaxDigits         = 12
)

// Config selects the station and number formatting of a program.
type Config struct {
	Lab    Lab
	Digits int
}

// Validate checks the lab and digit count.
func (c Config) Validate() error {
	if _, err := ParseLab(string(c.Lab)); err != nil {
		return err
	}
	if c.Digits < 0 || c.Digits > MaxDigits {
		return errors.Configuration("output digits must be in [0, %d], got %d", MaxDigits, c.Digits)
	}
	return nil
}

// Observer is notified of every appended instruction. An error aborts the
// emission that produced the instruction.
type Observer interface {
	Accumulate(Instruction) error
}

// Builder accumulates a program. It is not safe for concurrent use.
type Builder struct {
	fmt      formatter
	tshutter float64
	obs      Observer

	out     []Instruction
	shutter geometry.Shutter
	pos     geometry.Point
	hasPos  bool
	feed    float64
	depth   int
	homed   bool
}

// NewBuilder returns an empty program builder. obs may be nil.
func NewBuilder(cfg Config, obs Observer) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lab, _ := ParseLab(string(cfg.Lab))
	return &Builder{
		fmt:      formatter{digits: cfg.Digits},
		tshutter: lab.ShutterTime(),
		obs:      obs,
	}, nil
}

// Header appends the program preamble. It must come first.
func (b *Builder) Header(title string) error {
	if len(b.out) > 0 {
		return errors.Structure("header must be the first instruction, program already has %d", len(b.out))
	}
	return b.append(Instruction{Kind: KindHeader, Line: b.fmt.header(title)})
}

// Dwell appends a pause. Zero is allowed and still emitted.
func (b *Builder) Dwell(seconds float64) error {
	if !(seconds >= 0) || math.IsInf(seconds, 0) {
		return errors.InvalidArgument("dwell must be a non-negative number of seconds, got %g", seconds)
	}
	return b.append(Instruction{Kind: KindDwell, Seconds: seconds, Line: b.fmt.dwell(seconds)})
}

// Emit appends the moves for points, which must already be in machine
// coordinates. A point's shutter state is the state during the move that
// reaches it. A zero feed reuses the previous feed.
func (b *Builder) Emit(points []geometry.Point) error {
	if err := b.writable(); err != nil {
		return err
	}
	for i, p := range geometry.Coalesce(points) {
		if err := b.point(i, p); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) point(i int, p geometry.Point) error {
	if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
		return errors.InvalidArgument("point %d is not finite: (%g, %g, %g)", i, p.X, p.Y, p.Z)
	}
	if p.S > geometry.ShutterOpen {
		return errors.InvalidArgument("point %d: shutter must be either OPEN (1) or CLOSE (0), got %d", i, p.S)
	}
	feed := p.F
	switch {
	case feed == 0 && b.feed > 0:
		feed = b.feed
	case !(feed > 0) || math.IsInf(feed, 0):
		return errors.InvalidArgument("point %d: feed rate must be positive, got %g", i, p.F)
	}
	if p.S != b.shutter {
		if err := b.setShutter(p.S); err != nil {
			return err
		}
	}
	if b.hasPos && p.SamePos(b.pos) {
		return nil
	}
	b.feed = feed
	b.pos, b.hasPos = p, true
	return b.append(Instruction{
		Kind: KindMove,
		X:    p.X, Y: p.Y, Z: p.Z, F: feed,
		Line: b.fmt.move(p.X, p.Y, p.Z, feed),
	})
}

// CloseShutter closes the shutter if it is open.
func (b *Builder) CloseShutter() error {
	if b.shutter == geometry.ShutterClosed {
		return nil
	}
	return b.setShutter(geometry.ShutterClosed)
}

func (b *Builder) setShutter(s geometry.Shutter) error {
	in := Instruction{Kind: KindShutterOff, Seconds: b.tshutter}
	if s == geometry.ShutterOpen {
		in.Kind = KindShutterOn
	}
	in.Line = b.fmt.shutter(s == geometry.ShutterOpen, b.tshutter)
	b.shutter = s
	return b.append(in)
}

// Home closes the shutter and returns the stage home. No instruction may
// follow.
func (b *Builder) Home() error {
	if err := b.writable(); err != nil {
		return err
	}
	if b.depth > 0 {
		return errors.Structure("home inside a repeat block at depth %d", b.depth)
	}
	if err := b.CloseShutter(); err != nil {
		return err
	}
	b.homed = true
	return b.append(Instruction{Kind: KindHome, Line: "HOME X Y Z"})
}

// Shutter returns the current shutter state.
func (b *Builder) Shutter() geometry.Shutter { return b.shutter }

// Len returns the number of instructions emitted so far.
func (b *Builder) Len() int { return len(b.out) }

// Instructions returns a copy of the program.
func (b *Builder) Instructions() []Instruction {
	return append([]Instruction(nil), b.out...)
}

// Text renders the program, one instruction per line, newline terminated.
func (b *Builder) Text() string {
	return Render(b.out)
}

// Render joins the instruction lines.
func Render(ins []Instruction) string {
	var sb strings.Builder
	for _, in := range ins {
		sb.WriteString(in.Line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Builder) writable() error {
	if b.homed {
		return errors.Structure("program already ended with HOME")
	}
	return nil
}

func (b *Builder) append(in Instruction) error {
	if b.obs != nil {
		if err := b.obs.Accumulate(in); err != nil {
			return err
		}
	}
	b.out = append(b.out, in)
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
