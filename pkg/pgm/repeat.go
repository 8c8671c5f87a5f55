package pgm

import (
	"strconv"

	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/geometry"
)

// Class is the object class a program is compiled for.
type Class string

const (
	ClassWaveguide Class = "WG"
	ClassMarker    Class = "MARKERS"
	ClassTrench    Class = "TRENCH"
)

// MaxDepth is the deepest bunch nesting allowed for the class.
func (c Class) MaxDepth() int {
	if c == ClassMarker {
		return 1
	}
	return 2
}

// ValidateDepth fails when a grouping of the given depth exceeds the
// class limit.
func ValidateDepth(c Class, depth int) error {
	if depth > c.MaxDepth() {
		return errors.Structure("%s grouping depth %d exceeds the limit of %d", c, depth, c.MaxDepth())
	}
	return nil
}

// maxRepeatNesting bounds nested REPEAT blocks in one program.
const maxRepeatNesting = 3

// Repeat brackets the instructions appended by body between REPEAT n and
// ENDREPEAT. The shutter is closed on entry and before ENDREPEAT, and the
// first move of the body is always emitted so every pass returns to the
// body start.
func (b *Builder) Repeat(n int, body func() error) error {
	if n <= 0 {
		return errors.InvalidArgument("repeat count must be a positive integer, got %d", n)
	}
	if b.depth >= maxRepeatNesting {
		return errors.Structure("repeat nesting depth %d exceeds the limit of %d", b.depth+1, maxRepeatNesting)
	}
	if err := b.writable(); err != nil {
		return err
	}
	if err := b.CloseShutter(); err != nil {
		return err
	}
	if err := b.append(Instruction{Kind: KindRepeatBegin, Count: n, Line: "REPEAT " + strconv.Itoa(n)}); err != nil {
		return err
	}
	b.depth++
	b.hasPos = false
	if err := body(); err != nil {
		return err
	}
	if err := b.CloseShutter(); err != nil {
		return err
	}
	b.depth--
	return b.append(Instruction{Kind: KindRepeatEnd, Line: "ENDREPEAT"})
}

// Wrap emits points as the body of a REPEAT n block.
func (b *Builder) Wrap(points []geometry.Point, n int) error {
	return b.Repeat(n, func() error { return b.Emit(points) })
}

// Depth returns the current repeat nesting depth.
func (b *Builder) Depth() int { return b.depth }
