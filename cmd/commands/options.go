package commands

import (
	"encoding/json"
	"strings"

	"github.com/ncobase/couchview/view"

	"github.com/spf13/cobra"
)

// raw is the key and value type of CLI queries, rows are passed through as JSON
type raw = json.RawMessage

// rangeOptions are the flags shared by view and _all_docs queries
type rangeOptions struct {
	keys          []string
	startKey      string
	startKeyDocID string
	endKey        string
	endKeyDocID   string
	inclusiveEnd  bool
	descending    bool
	includeDocs   bool
	limit         int
	skip          int64
	rowsPerPage   int
	token         string
	all           bool
	previous      bool
}

func (o *rangeOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&o.keys, "key", "k", nil, "key as JSON, repeat for several keys")
	f.StringVar(&o.startKey, "start-key", "", "start key as JSON")
	f.StringVar(&o.startKeyDocID, "start-key-doc-id", "", "document id to start at within the start key")
	f.StringVar(&o.endKey, "end-key", "", "end key as JSON")
	f.StringVar(&o.endKeyDocID, "end-key-doc-id", "", "document id to end at within the end key")
	f.BoolVar(&o.inclusiveEnd, "inclusive-end", true, "include rows matching the end key")
	f.BoolVar(&o.descending, "descending", false, "read the index in reverse")
	f.BoolVar(&o.includeDocs, "include-docs", false, "include documents")
	f.IntVar(&o.limit, "limit", 0, "maximum number of rows (unpaginated only)")
	f.Int64Var(&o.skip, "skip", 0, "number of rows to skip (unpaginated only)")
	f.IntVarP(&o.rowsPerPage, "rows-per-page", "n", 0, "page size, enables pagination")
	f.StringVarP(&o.token, "token", "t", "", "continue from a page token")
	f.BoolVarP(&o.all, "all", "a", false, "walk every following page")
	f.BoolVar(&o.previous, "previous", false, "with --all, walk towards page 1 instead")
}

// apply copies the flags the user set onto the builder
func (o *rangeOptions) apply(cmd *cobra.Command, b *view.Builder[raw, raw]) {
	f := cmd.Flags()
	if len(o.keys) > 0 {
		keys := make([]raw, 0, len(o.keys))
		for _, k := range o.keys {
			keys = append(keys, jsonArg(k))
		}
		b.Keys(keys...)
	}
	if f.Changed("start-key") {
		b.StartKey(jsonArg(o.startKey))
	}
	if f.Changed("start-key-doc-id") {
		b.StartKeyDocID(o.startKeyDocID)
	}
	if f.Changed("end-key") {
		b.EndKey(jsonArg(o.endKey))
	}
	if f.Changed("end-key-doc-id") {
		b.EndKeyDocID(o.endKeyDocID)
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

// jsonArg reads a flag as JSON. Text that is not valid JSON is taken as a
// string, so --key alien means "alien".
func jsonArg(s string) raw {
	s = strings.TrimSpace(s)
	if json.Valid([]byte(s)) {
		return raw(s)
	}
	b, _ := json.Marshal(s)
	return b
}
