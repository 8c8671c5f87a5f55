package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/femtopgm/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "femtopgm compiles laser-written photonic circuits into NC programs",
		Long: `femtopgm turns a job file describing waveguides, alignment markers and
isolation trenches into numeric-control programs for a femtosecond
laser writing station: one program per object class, with estimated
fabrication times.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.calibrateCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
