package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/ir"
	"github.com/amenk/import-product/internal/store"
)

// JournalResult is a run with the writes it applied.
type JournalResult struct {
	Run     ir.Run            `json:"run"`
	Entries []ir.JournalEntry `json:"entries"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal <run-id>",
		Short: "Show the writes applied by a run",
		Long: `Show the status, counters and journaled writes of a batch or prune run,
in the order they were applied.

Example:
  rewrites journal 01929c4e-5b8a-7c3d-9e2f-0a1b2c3d4e5f`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runJournal(opts *RootOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := commandContext(cmd)

	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	run, err := sess.store.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return failWith(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeStore, "failed to read run", err)
	}
	entries, err := sess.store.ReadJournal(ctx, runID)
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeStore, "failed to read journal", err)
	}

	if formatter.Format == "json" {
		return formatter.SuccessForRun(run.ID, JournalResult{Run: run, Entries: entries})
	}

	w := formatter.Writer
	mode := ""
	if run.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Run %s %s%s\n", run.ID, run.Status, mode)
	fmt.Fprintf(w, "%d rows: %d created, %d updated, %d failed, %d skipped\n",
		run.Rows, run.Creates, run.Updates, run.Failed, run.Skipped)
	for _, e := range entries {
		fmt.Fprintf(w, "  [%d] %-6s #%d %s:%d@%d %s -> %s [%s]\n",
			e.Seq, e.Op, e.RewriteID, e.EntityType, e.EntityID, e.StoreID,
			e.RequestPath, e.TargetPath, e.RedirectType)
	}
	return nil
}
