package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/ir"
	"github.com/amenk/import-product/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	EntityType string
	EntityID   int64
	StoreID    int64
	Redirects  bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the rewrites of an entity",
		Long: `List the rewrites of one entity, ordered by id.

Example:
  rewrites list --entity 61413
  rewrites list --entity 61413 --store 1 --redirects`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EntityType, "type", "product", "entity type")
	cmd.Flags().Int64Var(&opts.EntityID, "entity", 0, "entity id (required)")
	cmd.Flags().Int64Var(&opts.StoreID, "store", 0, "store view id (0 = all stores)")
	cmd.Flags().BoolVar(&opts.Redirects, "redirects", false, "only permanent redirects")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	filter := store.RewriteFilter{
		EntityType: opts.EntityType,
		EntityID:   opts.EntityID,
		StoreID:    opts.StoreID,
	}
	if opts.Redirects {
		permanent := ir.RedirectPermanent
		filter.Redirect = &permanent
	}

	recs, err := sess.store.ListRewrites(commandContext(cmd), filter)
	if err != nil {
		return failWith(formatter, ExitFailure, ErrCodeStore, "list failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintf(formatter.Writer, "No rewrites for %s %d.\n", opts.EntityType, opts.EntityID)
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTORE\tREQUEST PATH\tTARGET PATH\tREDIRECT\tMANAGED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%t\n",
			*r.ID, r.StoreID, r.RequestPath, r.TargetPath, r.RedirectType, r.Managed())
	}
	return tw.Flush()
}
