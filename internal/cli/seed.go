package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/store"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load catalog data and existing rewrites",
		Long: `Load categories, store root categories, category assignments and
existing rewrites from a YAML fixture into the database.

Categories, roots and assignments are upserted; rewrites are inserted.

Example:
  rewrites seed --db ./rewrites.db ./catalog.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	fx, err := store.LoadFixture(path)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeInvalidInput, "failed to load fixture", err)
	}

	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	stats, err := sess.store.Seed(commandContext(cmd), fx)
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeStore, "seed failed", err)
	}
	sess.logger.Info("catalog seeded",
		"categories", stats.Categories,
		"roots", stats.Roots,
		"assignments", stats.Assignments,
		"rewrites", stats.Rewrites)

	if formatter.Format == "json" {
		return formatter.Success(stats)
	}
	fmt.Fprintf(formatter.Writer, "✓ Seeded %d categories, %d roots, %d assignments, %d rewrites\n",
		stats.Categories, stats.Roots, stats.Assignments, stats.Rewrites)
	return nil
}
