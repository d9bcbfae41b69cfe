package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/harness"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	StoreID int64
	MaxHops int
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <request-path>",
		Short: "Follow redirects from a request path",
		Long: `Follow permanent redirects from a request path to the internal target
that finally serves it. Loops and chains longer than --max-hops fail.

Example:
  rewrites resolve bruno-compete-hoodie-old.html --store 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.StoreID, "store", 1, "store view id")
	cmd.Flags().IntVar(&opts.MaxHops, "max-hops", engine.DefaultMaxHops, "longest redirect chain to follow")

	return cmd
}

func runResolve(opts *ResolveOptions, requestPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := engine.ResolveRedirect(commandContext(cmd), sess.store, opts.StoreID, requestPath, opts.MaxHops)
	if err != nil {
		return failWith(formatter, ExitFailure, errorCode(err), "resolve failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	for i, hop := range res.Hops {
		fmt.Fprintf(formatter.Writer, "%d. %s\n", i+1, harness.FormatOp(hop))
	}
	fmt.Fprintf(formatter.Writer, "%s => %s (%d hops)\n", res.RequestPath, res.Target, len(res.Hops))
	return nil
}
