package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/femtopgm/pkg/archive"
	"github.com/matzehuels/femtopgm/pkg/cache"
	"github.com/matzehuels/femtopgm/pkg/errors"
	femtoio "github.com/matzehuels/femtopgm/pkg/io"
	"github.com/matzehuels/femtopgm/pkg/observability"
	"github.com/matzehuels/femtopgm/pkg/observability/metrics"
	"github.com/matzehuels/femtopgm/pkg/pipeline"
)

type compileFlags struct {
	output      string
	warp        bool
	sample      string
	parallel    bool
	dryRun      bool
	metricsFile string
	archiveURI  string
	archiveDB   string
	cache       cacheFlags
}

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var f compileFlags

	cmd := &cobra.Command{
		Use:   "compile JOB.toml",
		Short: "Compile a job file into .pgm programs",
		Long: `Compile reads a TOML job file and writes one program per object class:
<stem>_WG.pgm, <stem>_MARKERS.pgm, <stem>_TRENCH.pgm and <stem>_TRENCHNN.pgm
for every trench column. Classes without objects are skipped.

With --warp (or warp = true in the job) the focus compensation surface
stored by "femtopgm calibrate" for the sample is applied.`,
		Example: `  femtopgm compile chip.toml -o out/
  femtopgm compile chip.toml --warp --sample wafer-12 --parallel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&f.warp, "warp", false, "apply warp compensation even if the job does not ask for it")
	cmd.Flags().StringVar(&f.sample, "sample", defaultSample, "sample name the warp surface was stored under")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "compile object classes concurrently")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "compile and report without writing programs")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&f.archiveURI, "archive-uri", "", "MongoDB URI to archive the compile record")
	cmd.Flags().StringVar(&f.archiveDB, "archive-db", archive.DefaultDatabase, "MongoDB database for the archive")
	addCacheFlags(cmd, &f.cache)

	return cmd
}

func addCacheFlags(cmd *cobra.Command, f *cacheFlags) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the surface cache")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "Redis URL of a shared surface cache")
	cmd.Flags().StringVar(&f.scope, "cache-scope", "", "key prefix separating setups that share a cache")
}

func (c *CLI) runCompile(ctx context.Context, path string, f compileFlags) error {
	if f.metricsFile != "" {
		hooks := metrics.NewHooks()
		observability.SetCompileHooks(hooks)
		observability.SetCacheHooks(hooks)
		defer func() {
			observability.Reset()
			if werr := hooks.WriteToTextfile(f.metricsFile); werr != nil {
				c.Logger.Warn("could not write metrics", "path", f.metricsFile, "err", werr)
			}
		}()
	}

	job, err := femtoio.ImportJob(path)
	if err != nil {
		return err
	}
	opts := job.Options
	opts.Logger = c.Logger
	opts.Parallel = f.parallel
	if f.warp {
		opts.Warp = true
	}
	if opts.Warp && opts.SampleX > 0 && opts.SampleY > 0 {
		if err := c.loadSurface(ctx, &opts, f); err != nil {
			return err
		}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Compiling %s...", opts.Filename))
	spinner.Start()
	res, err := c.newRunner().Compile(ctx, job.Cell, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if len(res.Programs) == 0 {
		printWarning("%s contains no objects, nothing to write", path)
		return nil
	}
	prog.done(fmt.Sprintf("Compiled %d programs", len(res.Programs)))

	fmt.Fprintln(c.Out, programTable(res))

	if !f.dryRun {
		paths, err := femtoio.ExportPrograms(ctx, res.Programs, f.output)
		if err != nil {
			return err
		}
		printSuccess("Wrote %d programs", len(paths))
		for _, p := range paths {
			printFile(p)
		}
	}

	if f.archiveURI != "" {
		c.archiveResult(ctx, res, opts, f)
	}
	return nil
}

func (c *CLI) loadSurface(ctx context.Context, opts *pipeline.Options, f compileFlags) error {
	store, closeCache, err := f.cache.open(ctx, c.Logger)
	if err != nil {
		return err
	}
	defer closeCache()

	surf, err := store.Load(ctx, f.sample, opts.SampleX, opts.SampleY)
	if stderrors.Is(err, cache.ErrCacheMiss) {
		return errors.Configuration("no warp surface stored for sample %q of %gx%g mm; run femtopgm calibrate first",
			f.sample, opts.SampleX, opts.SampleY)
	}
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded warp surface", "sample", f.sample, "center", surf.Eval(surf.CX, surf.CY))
	opts.Surface = surf
	return nil
}

// archiveResult stores the compile record. Programs are already written, so a
// failure is reported but does not fail the command.
func (c *CLI) archiveResult(ctx context.Context, res *pipeline.Result, opts pipeline.Options, f compileFlags) {
	a, err := archive.NewMongo(ctx, f.archiveURI, f.archiveDB)
	if err != nil {
		c.Logger.Warn("archive unavailable", "err", err)
		return
	}
	defer a.Close(context.Background())

	rec := archive.NewRecord(res, opts)
	if err := a.Save(ctx, rec); err != nil {
		c.Logger.Warn("could not archive compile record", "session", res.Session, "err", err)
		return
	}
	printDetail("Archived session %s", res.Session)
}
