package io

import (
	"github.com/matzehuels/femtopgm/pkg/cell"
	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/toolpath"
)

var kindNames = map[string]toolpath.Kind{
	"waveguide": toolpath.KindWaveguide,
	"marker":    toolpath.KindMarker,
	"trench":    toolpath.KindTrench,
}

// group is a bunch under construction. items holds objects and *group
// values in writing order.
type group struct {
	bunchSection
	kind   toolpath.Kind
	scan   int
	items  []any
	placed bool
}

// grouper places objects and bunches in writing order: a bunch takes the
// position of its first object.
type grouper struct {
	groups map[string]*group
	top    []any
}

func newGrouper(sections []bunchSection) (*grouper, error) {
	g := &grouper{groups: make(map[string]*group, len(sections))}
	for _, s := range sections {
		if s.Name == "" {
			return nil, errors.Configuration("bunch without a name")
		}
		if _, dup := g.groups[s.Name]; dup {
			return nil, errors.Configuration("duplicate bunch %q", s.Name)
		}
		k, ok := kindNames[s.Kind]
		if !ok {
			return nil, errors.Configuration("bunch %q: kind must be waveguide, marker or trench, got %q", s.Name, s.Kind)
		}
		scan := 1
		override(&scan, s.Scan)
		if scan < 1 {
			return nil, errors.InvalidArgument("bunch %q: scan must be at least 1, got %d", s.Name, scan)
		}
		g.groups[s.Name] = &group{bunchSection: s, kind: k, scan: scan}
	}
	for _, s := range sections {
		if _, err := g.chain(s.Name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// chain returns the bunches from the root down to name.
func (g *grouper) chain(name string) ([]*group, error) {
	var out []*group
	for n := name; n != ""; {
		gr, ok := g.groups[n]
		if !ok {
			return nil, errors.Configuration("unknown bunch %q", n)
		}
		if len(out) > len(g.groups) {
			return nil, errors.Configuration("bunch %q has a cyclic parent chain", name)
		}
		out = append([]*group{gr}, out...)
		n = gr.Parent
	}
	return out, nil
}

func (g *grouper) add(obj any, kind toolpath.Kind, bunch string) error {
	if bunch == "" {
		g.top = append(g.top, obj)
		return nil
	}
	chain, err := g.chain(bunch)
	if err != nil {
		return err
	}
	for i, gr := range chain {
		if gr.kind != kind {
			return errors.Configuration("bunch %q holds %s objects, got a %s", gr.Name, gr.kind, kind)
		}
		if gr.placed {
			continue
		}
		gr.placed = true
		if i == 0 {
			g.top = append(g.top, gr)
		} else {
			chain[i-1].items = append(chain[i-1].items, gr)
		}
	}
	last := chain[len(chain)-1]
	last.items = append(last.items, obj)
	return nil
}

// build converts the placed groups into cell bunches.
func (g *grouper) build() ([]any, error) {
	return convert(g.top)
}

func convert(items []any) ([]any, error) {
	out := make([]any, len(items))
	for i, it := range items {
		gr, ok := it.(*group)
		if !ok {
			out[i] = it
			continue
		}
		children, err := convert(gr.items)
		if err != nil {
			return nil, err
		}
		b, err := cell.NewBunch(gr.Name, gr.scan, children...)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
