package view

// Revision is the value of an _all_docs row
type Revision struct {
	Rev     string `json:"rev"`
	Deleted bool   `json:"deleted,omitempty"`
}

// NewAllDocsRequest starts a request on the _all_docs index. Keys are
// document ids. Rows per page can be set on the builder.
func NewAllDocsRequest(db *Database) *Builder[string, Revision] {
	return &Builder[string, Revision]{
		db:       db,
		endpoint: allDocs,
		params:   NewParameters[string, Revision](),
	}
}

// AllDocsResponse adds document id helpers to an _all_docs page
type AllDocsResponse struct {
	*Response[string, Revision]
}

// AllDocs wraps a response of an _all_docs request
func AllDocs(r *Response[string, Revision]) *AllDocsResponse {
	return &AllDocsResponse{Response: r}
}

// DocIDs returns the document ids of the page. Rows for unknown keys
// are skipped.
func (r *AllDocsResponse) DocIDs() []string {
	out := make([]string, 0, len(r.rows))
	for _, row := range r.rows {
		if row.Error() != "" {
			continue
		}
		out = append(out, row.ID())
	}
	return out
}

// IDsAndRevs maps each document id of the page to its current revision
func (r *AllDocsResponse) IDsAndRevs() (map[string]string, error) {
	out := make(map[string]string, len(r.rows))
	for _, row := range r.rows {
		if row.Error() != "" {
			continue
		}
		rev, err := row.Value()
		if err != nil {
			return nil, err
		}
		out[row.ID()] = rev.Rev
	}
	return out, nil
}
