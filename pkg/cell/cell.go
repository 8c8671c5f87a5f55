// Package cell holds the objects of one compilation.
//
// A [Cell] keeps four independent, ordered collections: waveguides,
// markers, trenches and trench columns. Values enter through [Cell.Add],
// which accepts exactly the recognized object types and homogeneous
// [Bunch] groupings, and rejects everything else with a STRUCTURE_ERROR.
// Grouping depth is checked on insertion against the per-class limit.
package cell

import (
	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/pgm"
	"github.com/matzehuels/femtopgm/pkg/toolpath"
)

// Node is one entry of a collection: either an object or a bunch.
type Node struct {
	Object toolpath.Object
	Bunch  *Bunch
}

// Cell is the composition root of a compilation. It is not safe for
// concurrent mutation; once populated it is only read.
type Cell struct {
	Name string

	waveguides []Node
	markers    []Node
	trenches   []Node
	columns    []*toolpath.TrenchColumn
}

// New returns an empty cell.
func New(name string) *Cell {
	return &Cell{Name: name}
}

// Add inserts an object, a bunch or a trench column.
func (c *Cell) Add(v any) error {
	switch v := v.(type) {
	case *toolpath.Waveguide:
		if v == nil {
			return errors.Structure("cannot add a nil waveguide")
		}
		if err := v.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeStructure, err, "cannot add an invalid waveguide")
		}
		c.waveguides = append(c.waveguides, Node{Object: v})
	case *toolpath.Marker:
		if v == nil {
			return errors.Structure("cannot add a nil marker")
		}
		c.markers = append(c.markers, Node{Object: v})
	case *toolpath.Trench:
		if v == nil {
			return errors.Structure("cannot add a nil trench")
		}
		c.trenches = append(c.trenches, Node{Object: v})
	case *toolpath.TrenchColumn:
		if v == nil {
			return errors.Structure("cannot add a nil trench column")
		}
		c.columns = append(c.columns, v)
	case *Bunch:
		if v == nil {
			return errors.Structure("cannot add a nil bunch")
		}
		class := ClassOf(v.Kind())
		if err := pgm.ValidateDepth(class, v.Depth()); err != nil {
			return err
		}
		l := c.list(v.Kind())
		*l = append(*l, Node{Bunch: v})
	default:
		return errors.Structure("unsupported object type %T: want waveguide, marker, trench, trench column or bunch", v)
	}
	return nil
}

// AddAll inserts values in order and stops at the first failure.
func (c *Cell) AddAll(vs ...any) error {
	for _, v := range vs {
		if err := c.Add(v); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cell) list(k toolpath.Kind) *[]Node {
	switch k {
	case toolpath.KindMarker:
		return &c.markers
	case toolpath.KindTrench:
		return &c.trenches
	}
	return &c.waveguides
}

// Nodes returns the collection of the given class. Trench columns are
// not part of the trench class; see Columns.
func (c *Cell) Nodes(class pgm.Class) []Node {
	switch class {
	case pgm.ClassWaveguide:
		return append([]Node(nil), c.waveguides...)
	case pgm.ClassMarker:
		return append([]Node(nil), c.markers...)
	case pgm.ClassTrench:
		return append([]Node(nil), c.trenches...)
	}
	return nil
}

// Columns returns the trench columns in insertion order.
func (c *Cell) Columns() []*toolpath.TrenchColumn {
	return append([]*toolpath.TrenchColumn(nil), c.columns...)
}

// Waveguides returns every waveguide, bunches flattened, in order.
func (c *Cell) Waveguides() []*toolpath.Waveguide {
	var out []*toolpath.Waveguide
	for _, o := range Flatten(c.waveguides) {
		out = append(out, o.(*toolpath.Waveguide))
	}
	return out
}

// Count returns the number of objects of each class, bunches flattened.
func (c *Cell) Count() map[pgm.Class]int {
	return map[pgm.Class]int{
		pgm.ClassWaveguide: len(Flatten(c.waveguides)),
		pgm.ClassMarker:    len(Flatten(c.markers)),
		pgm.ClassTrench:    len(Flatten(c.trenches)),
	}
}

// Empty reports whether the cell has nothing to write.
func (c *Cell) Empty() bool {
	return len(c.waveguides) == 0 && len(c.markers) == 0 && len(c.trenches) == 0 && len(c.columns) == 0
}

// ClassOf maps an object kind to its program class.
func ClassOf(k toolpath.Kind) pgm.Class {
	switch k {
	case toolpath.KindMarker:
		return pgm.ClassMarker
	case toolpath.KindTrench:
		return pgm.ClassTrench
	}
	return pgm.ClassWaveguide
}

// Depth returns the deepest bunch nesting in nodes.
func Depth(nodes []Node) int {
	d := 0
	for _, n := range nodes {
		if n.Bunch != nil {
			d = max(d, n.Bunch.Depth())
		}
	}
	return d
}

// Flatten returns the objects of nodes in writing order.
func Flatten(nodes []Node) []toolpath.Object {
	var out []toolpath.Object
	for _, n := range nodes {
		if n.Bunch != nil {
			out = append(out, Flatten(n.Bunch.items)...)
			continue
		}
		out = append(out, n.Object)
	}
	return out
}
