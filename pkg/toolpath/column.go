package toolpath

import (
	"sort"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// TrenchColumn is an ordered set of trenches sharing one column geometry.
// The trenches are cut into the gaps between the waveguides crossing the
// column.
type TrenchColumn struct {
	p        TrenchParams
	trenches []*Trench
}

// NewTrenchColumn returns an empty column spanning [YMin, YMax] around
// XCenter.
func NewTrenchColumn(p TrenchParams) (*TrenchColumn, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !(p.YMax > p.YMin) {
		return nil, errors.InvalidArgument("trench column y_max %g must exceed y_min %g", p.YMax, p.YMin)
	}
	return &TrenchColumn{p: p}, nil
}

// Params returns the column parameters.
func (c *TrenchColumn) Params() TrenchParams { return c.p }

// Trenches returns the trenches in cutting order.
func (c *TrenchColumn) Trenches() []*Trench {
	return append([]*Trench(nil), c.trenches...)
}

// Len returns the number of trenches.
func (c *TrenchColumn) Len() int { return len(c.trenches) }

// Cut replaces the column contents with one rectangle of Length per gap
// between consecutive waveguide crossings at XCenter. Each waveguide keeps
// AdjBridge clear on both sides; gaps narrower than one beam waist are
// skipped. Waveguides that do not cross the column are ignored.
func (c *TrenchColumn) Cut(waveguides []*Waveguide) error {
	type edge struct {
		y     float64
		guide bool
	}
	edges := []edge{{y: c.p.YMin}, {y: c.p.YMax}}
	for _, wg := range waveguides {
		if y, ok := wg.YAt(c.p.XCenter); ok && y > c.p.YMin && y < c.p.YMax {
			edges = append(edges, edge{y: y, guide: true})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].y < edges[j].y })

	adj := c.p.AdjBridge()
	x0, x1 := c.p.XCenter-c.p.Length/2, c.p.XCenter+c.p.Length/2
	var out []*Trench
	for i := 1; i < len(edges); i++ {
		lo, hi := edges[i-1].y, edges[i].y
		if edges[i-1].guide {
			lo += adj
		}
		if edges[i].guide {
			hi -= adj
		}
		if hi-lo < c.p.BeamWaist {
			continue
		}
		t, err := Rect(x0, lo, x1, hi, c.p)
		if err != nil {
			return err
		}
		out = append(out, t)
	}
	c.trenches = out
	return nil
}
