package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/harness"
	"github.com/amenk/import-product/internal/ir"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	EntityType string
	EntityID   int64
	URLKey     string
	StoreID    int64
	KindsDir   string
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what reconciling one entity would write",
		Long: `Compute the reconciliation plan of one entity without writing anything.

Lines starting with + are rewrites that would be created, ~ are existing
rewrites that would be updated and ! are request paths held by a manual
rewrite.

Example:
  rewrites plan --entity 61413 --url-key bruno-compete-hoodie --store 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EntityType, "type", "product", "entity type")
	cmd.Flags().Int64Var(&opts.EntityID, "entity", 0, "entity id (required)")
	cmd.Flags().StringVar(&opts.URLKey, "url-key", "", "url key of the entity (required)")
	cmd.Flags().Int64Var(&opts.StoreID, "store", 1, "store view id")
	cmd.Flags().StringVar(&opts.KindsDir, "kinds", "", "CUE kinds directory (overrides config)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("url-key")

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	kindsDir := opts.KindsDir
	if kindsDir == "" {
		kindsDir = sess.cfg.KindsDir
	}
	eng, err := sess.newEngine(ctx, kindsDir)
	if err != nil {
		return err
	}

	row := engine.Row{
		EntityType: opts.EntityType,
		EntityID:   opts.EntityID,
		URLKey:     opts.URLKey,
		StoreID:    opts.StoreID,
	}
	plan, err := eng.Plan(ctx, row)
	if err != nil {
		return failWith(formatter, ExitFailure, errorCode(err), "plan failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(plan)
	}
	writePlan(formatter.Writer, row.Key(), plan)
	return nil
}

// writePlan renders a plan for humans.
func writePlan(w io.Writer, key engine.EntityKey, plan *ir.Plan) {
	fmt.Fprintln(w, key.String())
	if plan.Empty() && len(plan.Conflicts) == 0 {
		fmt.Fprintln(w, "  up to date")
		return
	}
	for _, rec := range plan.ToCreate {
		fmt.Fprintf(w, "  + %s\n", harness.FormatOp(rec))
	}
	for _, rec := range plan.ToUpdate {
		fmt.Fprintf(w, "  ~ %s\n", harness.FormatOp(rec))
	}
	for _, c := range plan.Conflicts {
		fmt.Fprintf(w, "  ! %s held by manual rewrite #%d\n", c.RequestPath, c.HeldBy)
	}
	for _, c := range plan.Collisions {
		fmt.Fprintf(w, "  ! %s claimed by categories %d and %v, kept %d\n", c.RequestPath, c.Winner, c.Losers, c.Winner)
	}
}
