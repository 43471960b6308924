package commands

import (
	"context"

	"github.com/ncobase/couchview/view"

	"github.com/spf13/cobra"
)

type queryOptions struct {
	rangeOptions
	reduce     bool
	group      bool
	groupLevel int
	stale      string
	update     string
	stable     bool
}

func newQueryCommand(global *globalOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:     "query <design> <view>",
		Aliases: []string{"q"},
		Short:   "Query a view",
		Long: `Query a map/reduce view. Rows are printed as JSON lines on stdout,
page tokens on stderr. Keys are given as JSON, e.g. --start-key '[2010,"a"]'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, global, func(ctx context.Context, a *app) error {
				var b *view.Builder[raw, raw]
				if cmd.Flags().Changed("rows-per-page") {
					b = view.NewPaginatedRequest[raw, raw](a.db, args[0], args[1])
				} else {
					b = view.NewRequest[raw, raw](a.db, args[0], args[1])
				}
				opts.apply(cmd, b)
				req, err := b.Build()
				if err != nil {
					return err
				}
				return printPages(ctx, cmd, req, &opts.rangeOptions)
			})
		},
	}

	opts.register(cmd)
	f := cmd.Flags()
	f.BoolVar(&opts.reduce, "reduce", true, "run the reduce function")
	f.BoolVar(&opts.group, "group", false, "group reduced rows by key")
	f.IntVar(&opts.groupLevel, "group-level", 0, "group reduced rows by the first n key elements")
	f.StringVar(&opts.stale, "stale", "", "ok or update_after")
	f.StringVar(&opts.update, "update", "", "true, false or lazy")
	f.BoolVar(&opts.stable, "stable", false, "read from a stable set of shards")
	return cmd
}

func (o *queryOptions) apply(cmd *cobra.Command, b *view.Builder[raw, raw]) {
	o.rangeOptions.apply(cmd, b)
	f := cmd.Flags()
	if f.Changed("reduce") {
		b.Reduce(o.reduce)
	}
	if f.Changed("group") {
		b.Group(o.group)
	}
	if f.Changed("group-level") {
		b.GroupLevel(o.groupLevel)
	}
	if f.Changed("stale") {
		b.Stale(o.stale)
	}
	if f.Changed("update") {
		b.Update(o.update)
	}
	if f.Changed("stable") {
		b.Stable(o.stable)
	}
}
