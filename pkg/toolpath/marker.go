package toolpath

import (
	"golang.org/x/image/math/f64"

	"github.com/matzehuels/femtopgm/pkg/geometry"
)

// Marker is an alignment mark written as straight strokes.
type Marker struct {
	p  MarkerParams
	tr tracer
}

// NewMarker returns an empty marker.
func NewMarker(p MarkerParams) (*Marker, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Marker{p: p, tr: tracer{dl: p.Speed / p.CmdRateMax}}, nil
}

// NewCross returns a cross marker centred on (x, y).
func NewCross(x, y float64, p MarkerParams) (*Marker, error) {
	m, err := NewMarker(p)
	if err != nil {
		return nil, err
	}
	m.Cross(x, y)
	return m, nil
}

// Params returns the writing parameters.
func (m *Marker) Params() MarkerParams { return m.p }

// Cross appends a horizontal stroke of LX and a vertical stroke of LY
// through (x, y) at the marker depth.
func (m *Marker) Cross(x, y float64) *Marker {
	z := m.p.Depth
	m.stroke(f64.Vec3{x - m.p.LX/2, y, z}, f64.Vec3{x + m.p.LX/2, y, z})
	m.stroke(f64.Vec3{x, y - m.p.LY/2, z}, f64.Vec3{x, y + m.p.LY/2, z})
	return m
}

// stroke travels to from with the shutter closed and writes to to.
func (m *Marker) stroke(from, to f64.Vec3) {
	m.tr.travel(from, m.p.SpeedPos)
	m.tr.shutter(geometry.ShutterOpen)
	m.tr.line(to, m.p.Speed)
	m.tr.shutter(geometry.ShutterClosed)
}

func (m *Marker) Kind() Kind               { return KindMarker }
func (m *Marker) Points() []geometry.Point { return m.tr.points() }
func (m *Marker) Scan() int                { return m.p.Scan }
func (m *Marker) Settle() float64          { return 0 }
func (m *Marker) Duration() float64        { return duration(m.Points()) }
func (m *Marker) sealed()                  {}
