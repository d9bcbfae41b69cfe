package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/engine"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	DryRun      bool
	Workers     int
	MaxFailures int
	KindsDir    string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return newReconcileCommand(&ReconcileOptions{RootOptions: rootOpts})
}

func newReconcileCommand(opts *ReconcileOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <rows.yaml>",
		Short: "Reconcile a batch of imported rows",
		Long: `Reconcile every row of an import file against the rewrite table.

Rows are processed by a bounded worker pool; a failing row is reported and
the batch continues until --max-failures is exceeded. Interrupting the
command stops workers from taking new rows; rows never started are reported
as skipped and can be resubmitted safely.

Example:
  rewrites reconcile --db ./rewrites.db ./rows.yaml
  rewrites reconcile --dry-run --workers 8 ./rows.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "plan rows without writing")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "batch worker pool size (overrides config)")
	cmd.Flags().IntVar(&opts.MaxFailures, "max-failures", -1, "abort once more rows failed (0 = never, overrides config)")
	cmd.Flags().StringVar(&opts.KindsDir, "kinds", "", "CUE kinds directory (overrides config)")

	return cmd
}

func runReconcile(opts *ReconcileOptions, rowsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rows, err := loadRows(rowsPath)
	if err != nil {
		return failWith(formatter, ExitCommandError, ErrCodeInvalidInput, "failed to load rows", err)
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			sess.logger.Info("received signal, finishing started rows", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var extra []engine.EngineOption
	if opts.Workers > 0 {
		extra = append(extra, engine.WithWorkers(opts.Workers))
	}
	if opts.MaxFailures >= 0 {
		extra = append(extra, engine.WithMaxFailures(opts.MaxFailures))
	}
	if opts.RunIDs != nil {
		extra = append(extra, engine.WithRunIDGenerator(opts.RunIDs))
	}

	kindsDir := opts.KindsDir
	if kindsDir == "" {
		kindsDir = sess.cfg.KindsDir
	}
	eng, err := sess.newEngine(ctx, kindsDir, extra...)
	if err != nil {
		return err
	}

	report, batchErr := eng.RunBatch(ctx, rows, opts.DryRun)
	if report == nil {
		return failWith(formatter, ExitFailure, errorCode(batchErr), "batch failed", batchErr)
	}

	if formatter.Format == "json" {
		if err := formatter.SuccessForRun(report.Run.ID, report); err != nil {
			return err
		}
	} else {
		writeReport(formatter, report)
	}

	if batchErr != nil {
		return WrapExitError(ExitFailure, ErrCodeBatchFailed+": batch aborted", batchErr)
	}
	if report.Run.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d row(s) failed", ErrCodeBatchFailed, report.Run.Failed))
	}
	return nil
}

// writeReport renders a batch report for humans.
func writeReport(f *OutputFormatter, report *engine.BatchReport) {
	run := report.Run
	mode := ""
	if run.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(f.Writer, "Run %s %s%s\n", run.ID, run.Status, mode)

	for _, res := range report.Results {
		switch {
		case res.Skipped:
			fmt.Fprintf(f.Writer, "  - %s skipped\n", res.Row.Key())
		case res.Error != "":
			fmt.Fprintf(f.Writer, "  ✗ %s: %s\n", res.Row.Key(), res.Error)
		case f.Verbose && res.Plan != nil:
			writePlan(f.Writer, res.Row.Key(), res.Plan)
		}
	}

	fmt.Fprintf(f.Writer, "%d rows: %d created, %d updated, %d failed, %d skipped\n",
		run.Rows, run.Creates, run.Updates, run.Failed, run.Skipped)
}
