package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ncobase/couchview/view"

	"github.com/spf13/cobra"
)

// outputRow is the JSON line printed per row
type outputRow struct {
	ID    string          `json:"id,omitempty"`
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
	Doc   json.RawMessage `json:"doc,omitempty"`
	Error string          `json:"error,omitempty"`
}

func fetch[K, V any](ctx context.Context, req *view.Request[K, V], token string) (*view.Response[K, V], error) {
	if token != "" {
		return req.ResponseWithToken(ctx, token)
	}
	return req.Response(ctx)
}

// walk hands the requested page to fn and, with --all, every page after
// it (or before it with --previous)
func walk[K, V any](ctx context.Context, req *view.Request[K, V], o *rangeOptions, fn func(*view.Response[K, V]) error) error {
	resp, err := fetch(ctx, req, o.token)
	if err != nil {
		return err
	}
	for resp != nil {
		if err := fn(resp); err != nil {
			return err
		}
		if !o.all {
			return nil
		}
		if o.previous {
			resp, err = resp.PreviousPage(ctx)
		} else {
			resp, err = resp.NextPage(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printPages(ctx context.Context, cmd *cobra.Command, req *view.Request[raw, raw], o *rangeOptions) error {
	return walk(ctx, req, o, func(resp *view.Response[raw, raw]) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, row := range resp.Rows() {
			out, err := toOutputRow(row)
			if err != nil {
				return err
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return printFooter(cmd.ErrOrStderr(), resp)
	})
}

func printAllDocs(ctx context.Context, cmd *cobra.Command, req *view.Request[string, view.Revision], o *rangeOptions) error {
	return walk(ctx, req, o, func(resp *view.Response[string, view.Revision]) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, row := range resp.Rows() {
			out := outputRow{ID: row.ID(), Error: row.Error()}
			key, _ := row.Key()
			out.Key, _ = json.Marshal(key)
			if row.Error() == "" {
				rev, err := row.Value()
				if err != nil {
					return err
				}
				out.Value, _ = json.Marshal(rev)
			}
			if req.Parameters().IncludeDocs() {
				if _, err := row.DocumentInto(&out.Doc); err != nil {
					return err
				}
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return printFooter(cmd.ErrOrStderr(), resp)
	})
}

func toOutputRow(row view.Row[raw, raw]) (*outputRow, error) {
	key, err := row.Key()
	if err != nil {
		return nil, err
	}
	value, err := row.Value()
	if err != nil {
		return nil, err
	}
	out := &outputRow{ID: row.ID(), Key: key, Value: value, Error: row.Error()}
	if _, err := row.DocumentInto(&out.Doc); err != nil {
		return nil, err
	}
	return out, nil
}

// printFooter writes the page position and tokens of paginated responses
func printFooter[K, V any](w io.Writer, resp *view.Response[K, V]) error {
	if !resp.HasNextPage() && !resp.HasPreviousPage() {
		return nil
	}
	fmt.Fprintf(w, "page %d, rows %d-%d of %d\n",
		resp.PageNumber(), resp.FirstRowCount(), resp.LastRowCount(), resp.TotalRowCount())
	if tok, err := resp.PreviousPageToken(); err != nil {
		return err
	} else if tok != "" {
		fmt.Fprintf(w, "previous: %s\n", tok)
	}
	if tok, err := resp.NextPageToken(); err != nil {
		return err
	} else if tok != "" {
		fmt.Fprintf(w, "next: %s\n", tok)
	}
	return nil
}
