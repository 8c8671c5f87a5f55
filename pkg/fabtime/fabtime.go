// Package fabtime estimates how long a program takes to run.
//
// An [Accountant] observes instructions as they are emitted and keeps a
// running total: moves take distance / feed, dwells their duration, and
// shutter changes the station's settle time. Repeat blocks multiply their
// body and add the travel from the body end back to its start for every
// pass but the last. The first move of a program starts from an unknown
// position and is not counted.
package fabtime

import (
	"math"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
	"github.com/matzehuels/femtopgm/pkg/pgm"
)

// Breakdown splits a total by cause.
type Breakdown struct {
	Move    float64
	Dwell   float64
	Shutter float64
	Return  float64
}

// Total returns the sum of all parts.
func (b Breakdown) Total() float64 {
	return b.Move + b.Dwell + b.Shutter + b.Return
}

type block struct {
	count    int
	outer    float64
	mult     float64
	start    geometry.Point
	hasStart bool
}

// Accountant accumulates a fabrication-time estimate. The zero value is not
// usable; call New.
type Accountant struct {
	tshutter float64

	parts  Breakdown
	pos    geometry.Point
	hasPos bool
	blocks []block
}

// New returns an accountant for the given station.
func New(lab pgm.Lab) *Accountant {
	return &Accountant{tshutter: lab.ShutterTime()}
}

// Accumulate adds the duration of one instruction.
func (a *Accountant) Accumulate(in pgm.Instruction) error {
	m := a.mult()
	switch in.Kind {
	case pgm.KindHeader, pgm.KindHome:
	case pgm.KindDwell:
		if !(in.Seconds >= 0) {
			return errors.InvalidArgument("dwell must be non-negative, got %g", in.Seconds)
		}
		a.parts.Dwell += m * in.Seconds
	case pgm.KindShutterOn, pgm.KindShutterOff:
		a.parts.Shutter += m * a.tshutter
	case pgm.KindMove:
		if !(in.F > 0) {
			return errors.InvalidArgument("move feed rate must be positive, got %g", in.F)
		}
		p := geometry.Point{X: in.X, Y: in.Y, Z: in.Z, F: in.F}
		// The move into a block happens once; later passes arrive by the
		// return travel counted at ENDREPEAT.
		for i := len(a.blocks) - 1; i >= 0 && !a.blocks[i].hasStart; i-- {
			a.blocks[i].start, a.blocks[i].hasStart = p, true
			m = a.blocks[i].outer
		}
		if a.hasPos {
			a.parts.Move += m * geometry.Distance(a.pos, p) / in.F
		}
		a.pos, a.hasPos = p, true
	case pgm.KindRepeatBegin:
		if in.Count <= 0 {
			return errors.InvalidArgument("repeat count must be a positive integer, got %d", in.Count)
		}
		a.blocks = append(a.blocks, block{count: in.Count, outer: m, mult: m * float64(in.Count)})
	case pgm.KindRepeatEnd:
		n := len(a.blocks)
		if n == 0 {
			return errors.Structure("ENDREPEAT without a matching REPEAT")
		}
		b := a.blocks[n-1]
		a.blocks = a.blocks[:n-1]
		if b.hasStart && a.hasPos && b.count > 1 {
			back := geometry.Distance(a.pos, b.start) / b.start.F
			a.parts.Return += a.mult() * float64(b.count-1) * back
		}
	default:
		return errors.InvalidArgument("unknown instruction kind %d", in.Kind)
	}
	return nil
}

// Add adds a raw duration in seconds.
func (a *Accountant) Add(seconds float64) error {
	if !(seconds >= 0) || math.IsInf(seconds, 0) {
		return errors.InvalidArgument("duration must be a non-negative number of seconds, got %g", seconds)
	}
	a.parts.Dwell += a.mult() * seconds
	return nil
}

// Total returns the accumulated estimate in seconds.
func (a *Accountant) Total() float64 { return a.parts.Total() }

// Breakdown returns the accumulated estimate split by cause.
func (a *Accountant) Breakdown() Breakdown { return a.parts }

// Reset clears the estimate and the tracked position.
func (a *Accountant) Reset() {
	*a = Accountant{tshutter: a.tshutter}
}

func (a *Accountant) mult() float64 {
	if n := len(a.blocks); n > 0 {
		return a.blocks[n-1].mult
	}
	return 1
}

// PathSeconds is the travel time along points at their own feed rates.
// Points with a non-positive feed are skipped.
func PathSeconds(points []geometry.Point) float64 {
	var s float64
	for i := 1; i < len(points); i++ {
		if f := points[i].F; f > 0 {
			s += geometry.Distance(points[i-1], points[i]) / f
		}
	}
	return s
}
