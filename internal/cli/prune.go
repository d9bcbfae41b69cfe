package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/harness"
	"github.com/amenk/import-product/internal/ir"
)

// PruneOptions holds flags for the prune command.
type PruneOptions struct {
	*RootOptions
	EntityType string
	EntityID   int64
	StoreID    int64

	// RunIDs allows overriding the run id generator (for testing).
	RunIDs engine.RunIDGenerator
}

// PruneResult lists the redirects a prune removed.
type PruneResult struct {
	RunID   string             `json:"run_id"`
	Removed []ir.RewriteRecord `json:"removed"`
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return newPruneCommand(&PruneOptions{RootOptions: rootOpts})
}

func newPruneCommand(opts *PruneOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove the generated redirects of an entity",
		Long: `Remove the autogenerated permanent redirects of one entity in one store.

Reconciliation never deletes rewrites; old request paths stay as redirects
until an operator prunes them. Canonical rewrites and manual rewrites are
never removed. Removals are journaled as a run of their own.

Example:
  rewrites prune --entity 61413 --store 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EntityType, "type", "product", "entity type")
	cmd.Flags().Int64Var(&opts.EntityID, "entity", 0, "entity id (required)")
	cmd.Flags().Int64Var(&opts.StoreID, "store", 0, "store view id (required)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runPrune(opts *PruneOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	gen := opts.RunIDs
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	run := ir.Run{ID: gen.Generate(), Status: ir.RunStatusRunning, Rows: 1}

	if err := sess.store.BeginRun(ctx, run); err != nil {
		return failWith(formatter, ExitFailure, ErrCodeStore, "failed to begin run", err)
	}

	removed, pruneErr := sess.store.PruneRedirects(ctx, opts.EntityType, opts.EntityID, opts.StoreID)
	if pruneErr == nil {
		pruneErr = journalRemovals(ctx, sess, run.ID, removed)
	}

	run.Status = ir.RunStatusCompleted
	if pruneErr != nil {
		run.Status = ir.RunStatusAborted
		run.Failed = 1
	}
	if err := sess.store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		sess.logger.Error("failed to finish run", "run_id", run.ID, "error", err)
	}
	if pruneErr != nil {
		return failWith(formatter, ExitFailure, ErrCodeStore, "prune failed", pruneErr)
	}

	sess.logger.Info("redirects pruned",
		"run_id", run.ID,
		"entity_type", opts.EntityType,
		"entity_id", opts.EntityID,
		"store_id", opts.StoreID,
		"removed", len(removed))

	if formatter.Format == "json" {
		return formatter.SuccessForRun(run.ID, PruneResult{RunID: run.ID, Removed: removed})
	}
	for _, rec := range removed {
		fmt.Fprintf(formatter.Writer, "  - %s\n", harness.FormatOp(rec))
	}
	fmt.Fprintf(formatter.Writer, "Run %s removed %d redirect(s)\n", run.ID, len(removed))
	return nil
}

// journalRemovals appends one delete entry per removed redirect, after the
// last recorded seq.
func journalRemovals(ctx context.Context, sess *session, runID string, removed []ir.RewriteRecord) error {
	last, err := sess.store.LastJournalSeq(ctx)
	if err != nil {
		return err
	}
	clock := engine.NewClockAt(last)
	for _, rec := range removed {
		entry := ir.JournalEntry{
			RunID:        runID,
			Seq:          clock.Next(),
			Op:           ir.OpDelete,
			RewriteID:    *rec.ID,
			EntityType:   rec.EntityType,
			EntityID:     rec.EntityID,
			StoreID:      rec.StoreID,
			RequestPath:  rec.RequestPath,
			TargetPath:   rec.TargetPath,
			RedirectType: rec.RedirectType,
		}
		if err := sess.store.AppendJournal(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
