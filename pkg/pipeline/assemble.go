package pipeline

import (
	"github.com/matzehuels/femtopgm/pkg/cell"
	"github.com/matzehuels/femtopgm/pkg/fabtime"
	"github.com/matzehuels/femtopgm/pkg/geometry"
	"github.com/matzehuels/femtopgm/pkg/pgm"
	"github.com/matzehuels/femtopgm/pkg/toolpath"
)

// assemble emits one program. Each call owns its builder and accountant, so
// concurrent calls share nothing but the frame and options.
func assemble(j job, frame *geometry.Frame, opts *Options) (Program, error) {
	cfg := opts.Config()
	acct := fabtime.New(cfg.Lab)
	b, err := pgm.NewBuilder(cfg, acct)
	if err != nil {
		return Program{}, err
	}
	e := emitter{b: b, frame: frame, shortPause: *opts.ShortPause}

	if err := b.Header(j.name); err != nil {
		return Program{}, err
	}
	if err := b.Dwell(*opts.LongPause); err != nil {
		return Program{}, err
	}
	if err := e.nodes(j.nodes); err != nil {
		return Program{}, err
	}
	if err := b.Home(); err != nil {
		return Program{}, err
	}
	return Program{
		Class:        j.class,
		Name:         j.name,
		Instructions: b.Instructions(),
		Seconds:      acct.Total(),
		Breakdown:    acct.Breakdown(),
	}, nil
}

type emitter struct {
	b          *pgm.Builder
	frame      *geometry.Frame
	shortPause float64
}

func (e emitter) nodes(nodes []cell.Node) error {
	for _, n := range nodes {
		if n.Bunch == nil {
			if err := e.object(n.Object); err != nil {
				return err
			}
			continue
		}
		items := n.Bunch.Items()
		if n.Bunch.Scan() > 1 {
			if err := e.b.Repeat(n.Bunch.Scan(), func() error { return e.nodes(items) }); err != nil {
				return err
			}
			continue
		}
		if err := e.nodes(items); err != nil {
			return err
		}
	}
	return nil
}

func (e emitter) object(o toolpath.Object) error {
	if s := o.Settle(); s > 0 {
		if err := e.b.Dwell(s); err != nil {
			return err
		}
	}
	if t, ok := o.(*toolpath.Trench); ok {
		if o.Scan() > 1 {
			return e.b.Repeat(o.Scan(), func() error { return e.layers(t) })
		}
		return e.layers(t)
	}
	pts := geometry.Transform(o.Points(), e.frame)
	if o.Scan() > 1 {
		return e.b.Wrap(pts, o.Scan())
	}
	return e.b.Emit(pts)
}

// layers writes the trench passes top to bottom with a short pause
// between them.
func (e emitter) layers(t *toolpath.Trench) error {
	for i, layer := range t.Layers() {
		if i > 0 {
			if err := e.b.CloseShutter(); err != nil {
				return err
			}
			if err := e.b.Dwell(e.shortPause); err != nil {
				return err
			}
		}
		if err := e.b.Emit(geometry.Transform(layer, e.frame)); err != nil {
			return err
		}
	}
	return nil
}
