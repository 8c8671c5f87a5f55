package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/femtopgm/pkg/archive"
	"github.com/matzehuels/femtopgm/pkg/cache"
	"github.com/matzehuels/femtopgm/pkg/errors"
)

// traceCommand creates the trace command.
func (c *CLI) traceCommand() *cobra.Command {
	var uri, db string

	cmd := &cobra.Command{
		Use:   "trace PROGRAM.pgm",
		Short: "Find the archived compile session that produced a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if uri == "" {
				return errors.Configuration("--archive-uri is required")
			}
			return c.runTrace(cmd.Context(), args[0], uri, db)
		},
	}
	cmd.Flags().StringVar(&uri, "archive-uri", "", "MongoDB URI of the compile archive")
	cmd.Flags().StringVar(&db, "archive-db", archive.DefaultDatabase, "MongoDB database of the archive")
	return cmd
}

func (c *CLI) runTrace(ctx context.Context, path, uri, db string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	sum := cache.Hash(data)

	a, err := archive.NewMongo(ctx, uri, db)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	records, err := a.FindByChecksum(ctx, sum)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printWarning("No archived session produced %s", path)
		printDetail("sha256 %s", sum)
		return nil
	}

	for _, r := range records {
		printInfo("Session %s", StyleHighlight.Render(r.Session))
		printKeyValue("Job", r.Stem)
		printKeyValue("Lab", r.Lab)
		printKeyValue("Warp", strconv.FormatBool(r.Warp))
		printKeyValue("Compiled", r.CreatedAt.Local().Format("2006-01-02 15:04"))
		printKeyValue("Compiler", r.Compiler.String())
		for _, p := range r.Programs {
			if p.SHA256 == sum {
				printKeyValue("Program", fmt.Sprintf("%s, %d instructions, %s", p.Name, p.Instructions, formatSeconds(p.Seconds)))
			}
		}
	}
	return nil
}
