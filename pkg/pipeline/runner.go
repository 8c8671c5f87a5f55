package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/femtopgm/pkg/cell"
	"github.com/matzehuels/femtopgm/pkg/errors"
	"github.com/matzehuels/femtopgm/pkg/observability"
	"github.com/matzehuels/femtopgm/pkg/pgm"
)

// Runner compiles cells. It holds no compilation state, so multiple
// goroutines can safely use the same Runner with different cells.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// job is one program to compile.
type job struct {
	class  pgm.Class
	name   string
	nodes  []cell.Node
	column int
}

// Compile turns every non-empty object class of c into a program.
//
// Nesting depth is checked for every class before any instruction is
// emitted. A failing class aborts the whole compilation; no partial result
// is returned.
func (r *Runner) Compile(ctx context.Context, c *cell.Cell, opts Options) (*Result, error) {
	if c == nil {
		return nil, errors.Structure("cell is nil")
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	frame, err := opts.Frame()
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}

	start := time.Now()
	objects := 0
	for _, n := range c.Count() {
		objects += n
	}
	for _, col := range c.Columns() {
		objects += col.Len()
	}
	hooks := observability.Compile()
	hooks.OnCompileStart(ctx, opts.Filename, objects)

	jobs, err := r.plan(c, &opts)
	if err != nil {
		hooks.OnCompileComplete(ctx, opts.Filename, 0, time.Since(start), err)
		return nil, err
	}

	programs := make([]Program, len(jobs))
	run := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		jobStart := time.Now()
		p, err := assemble(jobs[i], frame, &opts)
		hooks.OnProgramComplete(ctx, string(jobs[i].class), len(p.Instructions), p.Seconds, time.Since(jobStart), err)
		if err != nil {
			return fmt.Errorf("%s: %w", jobs[i].name, err)
		}
		opts.Logger.Info("compiled program",
			"program", p.Name,
			"instructions", len(p.Instructions),
			"seconds", fmt.Sprintf("%.1f", p.Seconds),
			"duration", time.Since(jobStart))
		programs[i] = p
		return nil
	}

	if opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range jobs {
			g.Go(func() error { return run(gctx, i) })
		}
		err = g.Wait()
	} else {
		for i := range jobs {
			if err = run(ctx, i); err != nil {
				break
			}
		}
	}
	if err != nil {
		hooks.OnCompileComplete(ctx, opts.Filename, 0, time.Since(start), err)
		return nil, err
	}

	result := &Result{
		Session:  uuid.NewString(),
		Programs: programs,
	}
	for _, p := range programs {
		result.Stats.Instructions += len(p.Instructions)
		result.Stats.Seconds += p.Seconds
	}
	result.Stats.Objects = objects
	result.Stats.Programs = len(programs)
	result.Stats.CompileTime = time.Since(start)
	hooks.OnCompileComplete(ctx, opts.Filename, len(programs), result.Stats.CompileTime, nil)

	opts.Logger.Debug("compilation finished",
		"session", result.Session,
		"objects", objects,
		"programs", len(programs),
		"duration", result.Stats.CompileTime)
	return result, nil
}

// plan validates nesting depths and lists the programs to build.
func (r *Runner) plan(c *cell.Cell, opts *Options) ([]job, error) {
	var jobs []job
	for _, class := range []pgm.Class{pgm.ClassWaveguide, pgm.ClassMarker, pgm.ClassTrench} {
		nodes := c.Nodes(class)
		if err := pgm.ValidateDepth(class, cell.Depth(nodes)); err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			opts.Logger.Debug("skipping empty class", "program", class)
			continue
		}
		jobs = append(jobs, job{class: class, name: opts.ProgramName(class, 0), nodes: nodes})
	}
	for i, col := range c.Columns() {
		if col.Len() == 0 {
			opts.Logger.Debug("skipping empty trench column", "column", i+1)
			continue
		}
		var nodes []cell.Node
		for _, t := range col.Trenches() {
			nodes = append(nodes, cell.Node{Object: t})
		}
		jobs = append(jobs, job{class: pgm.ClassTrench, name: opts.ProgramName(pgm.ClassTrench, i+1), nodes: nodes, column: i + 1})
	}
	return jobs, nil
}

// CompileProgram builds a single program from nodes. It is the building
// block of Compile and is exported for callers that assemble their own
// object lists.
func CompileProgram(class pgm.Class, nodes []cell.Node, opts Options) (Program, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Program{}, fmt.Errorf("invalid options: %w", err)
	}
	if err := pgm.ValidateDepth(class, cell.Depth(nodes)); err != nil {
		return Program{}, err
	}
	frame, err := opts.Frame()
	if err != nil {
		return Program{}, err
	}
	return assemble(job{class: class, name: opts.ProgramName(class, 0), nodes: nodes}, frame, &opts)
}
