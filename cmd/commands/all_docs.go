package commands

import (
	"context"
	"encoding/json"

	"github.com/ncobase/couchview/view"

	"github.com/spf13/cobra"
)

func newAllDocsCommand(global *globalOptions) *cobra.Command {
	opts := &rangeOptions{}
	var revs bool

	cmd := &cobra.Command{
		Use:   "all-docs",
		Short: "List documents of the database",
		Long: `List the _all_docs index. Keys are document ids; plain text ids
need no JSON quoting. With --revs a single id to revision object is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, global, func(ctx context.Context, a *app) error {
				b := view.NewAllDocsRequest(a.db)
				applyAllDocs(cmd, opts, b)
				req, err := b.Build()
				if err != nil {
					return err
				}
				if !revs {
					return printAllDocs(ctx, cmd, req, opts)
				}
				resp, err := fetch(ctx, req, opts.token)
				if err != nil {
					return err
				}
				m, err := view.AllDocs(resp).IDsAndRevs()
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(m)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&revs, "revs", false, "print ids and revisions of the page as one object")
	return cmd
}

// applyAllDocs maps the range flags onto an _all_docs builder, whose keys
// are plain document ids.
func applyAllDocs(cmd *cobra.Command, o *rangeOptions, b *view.Builder[string, view.Revision]) {
	f := cmd.Flags()
	if len(o.keys) > 0 {
		ids := make([]string, 0, len(o.keys))
		for _, k := range o.keys {
			ids = append(ids, docID(k))
		}
		b.Keys(ids...)
	}
	if f.Changed("start-key") {
		b.StartKey(docID(o.startKey))
	}
	if f.Changed("end-key") {
		b.EndKey(docID(o.endKey))
	}
	if f.Changed("inclusive-end") {
		b.InclusiveEnd(o.inclusiveEnd)
	}
	if f.Changed("descending") {
		b.Descending(o.descending)
	}
	if f.Changed("include-docs") {
		b.IncludeDocs(o.includeDocs)
	}
	if f.Changed("limit") {
		b.Limit(o.limit)
	}
	if f.Changed("skip") {
		b.Skip(o.skip)
	}
	if f.Changed("rows-per-page") {
		b.RowsPerPage(o.rowsPerPage)
	}
}

// docID accepts an id either quoted as JSON or as plain text
func docID(s string) string {
	var v string
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
