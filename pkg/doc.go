// Package pkg provides the libraries of femtopgm, a compiler from laser
// written photonic geometry to numeric-control programs.
//
// # Overview
//
// A job describes waveguides, alignment markers and isolation trenches on
// a glass sample. femtopgm samples each object into a tool path, moves it
// into the machine frame and emits one program per object class for the
// motion controller of the writing station:
//
//	TOML job
//	    ↓
//	[io]        decode sections, build objects, group bunches
//	    ↓
//	[cell]      ordered collections per object class
//	    ↓
//	[toolpath]  sampled points with feed and shutter state
//	    ↓
//	[geometry]  translate, rotate, add warp offset
//	    ↓
//	[pgm]       instructions, REPEAT blocks, text
//	    ↓
//	[fabtime]   estimated fabrication time
//	    ↓
//	<stem>_WG.pgm, <stem>_MARKERS.pgm, <stem>_TRENCH.pgm, <stem>_TRENCHNN.pgm
//
// [pipeline] runs these steps for every class and is the entry point used
// by the CLI and by tests.
//
// # Quick Start
//
//	p := toolpath.DefaultWaveguideParams()
//	p.Speed = 20
//	wg, err := toolpath.NewWaveguide(p)
//	if err != nil {
//	    return err
//	}
//	wg.Start(0, 0.1, 0.035).Linear(5, 0, 0).SinBend(0.08).End()
//
//	c := cell.New("chip")
//	if err := c.Add(wg); err != nil {
//	    return err
//	}
//	res, err := pipeline.NewRunner(logger).Compile(ctx, c, pipeline.Options{
//	    Filename: "chip",
//	    Lab:      "CAPABLE",
//	})
//
// # Supporting Packages
//
// [warp] fits and evaluates the focus compensation surface. [cache] keeps
// fitted surfaces between sessions (file, Redis). [archive] records every
// compile session in MongoDB. [observability] carries instrumentation hooks
// and [observability/metrics] implements them with Prometheus. [errors]
// defines the error codes shared by all packages.
//
// [io]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/io
// [cell]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/cell
// [toolpath]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/toolpath
// [geometry]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/geometry
// [pgm]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/pgm
// [fabtime]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/fabtime
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/pipeline
// [warp]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/warp
// [cache]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/cache
// [archive]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/archive
// [observability]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/observability
// [observability/metrics]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/observability/metrics
// [errors]: https://pkg.go.dev/github.com/matzehuels/femtopgm/pkg/errors
package pkg
