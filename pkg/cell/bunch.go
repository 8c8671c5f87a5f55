package cell

import (
	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/toolpath"
)

// Bunch groups objects of one kind that are written together. A bunch
// with Scan > 1 repeats its whole body.
type Bunch struct {
	name  string
	scan  int
	kind  toolpath.Kind
	depth int
	items []Node
}

// NewBunch groups items, which must all be objects of the same kind or
// bunches of that kind.
func NewBunch(name string, scan int, items ...any) (*Bunch, error) {
	if scan < 1 {
		return nil, errors.InvalidArgument("bunch %q: scan must be at least 1, got %d", name, scan)
	}
	if len(items) == 0 {
		return nil, errors.Structure("bunch %q is empty", name)
	}
	b := &Bunch{name: name, scan: scan, depth: 1}
	for i, it := range items {
		if isNil(it) {
			return nil, errors.Structure("bunch %q item %d is nil", name, i)
		}
		var (
			n Node
			k toolpath.Kind
		)
		switch v := it.(type) {
		case *toolpath.Waveguide:
			if err := v.Err(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeStructure, err, "bunch %q item %d", name, i)
			}
			n, k = Node{Object: v}, toolpath.KindWaveguide
		case *toolpath.Marker:
			n, k = Node{Object: v}, toolpath.KindMarker
		case *toolpath.Trench:
			n, k = Node{Object: v}, toolpath.KindTrench
		case *Bunch:
			n, k = Node{Bunch: v}, v.kind
			b.depth = max(b.depth, v.depth+1)
		default:
			return nil, errors.Structure("bunch %q item %d: unsupported type %T", name, i, it)
		}
		if i > 0 && k != b.kind {
			return nil, errors.Structure("bunch %q mixes %s and %s", name, b.kind, k)
		}
		b.kind = k
		b.items = append(b.items, n)
	}
	return b, nil
}

// Name returns the bunch label.
func (b *Bunch) Name() string { return b.name }

// Scan returns the number of passes over the bunch.
func (b *Bunch) Scan() int { return b.scan }

// Kind returns the kind shared by every object in the bunch.
func (b *Bunch) Kind() toolpath.Kind { return b.kind }

// Depth is 1 for a bunch of objects and one more per nested level.
func (b *Bunch) Depth() int { return b.depth }

// Items returns the direct children.
func (b *Bunch) Items() []Node { return append([]Node(nil), b.items...) }

func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *toolpath.Waveguide:
		return v == nil
	case *toolpath.Marker:
		return v == nil
	case *toolpath.Trench:
		return v == nil
	case *Bunch:
		return v == nil
	}
	return false
}
