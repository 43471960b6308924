package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/paging"
)

// Response is one page of a view result, or the whole result when the
// query is not paginated. Adjacent pages are fetched on demand.
type Response[K, V any] struct {
	request     *Request[K, V]
	rows        []Row[K, V]
	pageNumber  int64
	hasNext     bool
	hasPrevious bool
	next        *PageMetadata[K, V]
	previous    *PageMetadata[K, V]
	totalRows   int64
	offset      int64
	updateSeq   json.RawMessage
	firstRow    int64
	lastRow     int64
}

func newResponse[K, V any](req *Request[K, V], raw *rawResponse, meta *PageMetadata[K, V]) (*Response[K, V], error) {
	initial := req.params
	resp := &Response[K, V]{request: req, pageNumber: 1, updateSeq: raw.UpdateSeq}

	// page 1 can only be read forward
	dir := paging.Forward
	if meta != nil {
		resp.pageNumber, dir = meta.PageNumber, meta.Direction
	}

	rows := make([]Row[K, V], 0, len(raw.Rows))
	for i, r := range raw.Rows {
		row, err := newRow[K, V](r, req.endpoint.isAllDocs())
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	resultRows := len(rows)

	resp.totalRows = int64(resultRows)
	if raw.TotalRows != nil {
		resp.totalRows = *raw.TotalRows
	}
	if raw.Offset != nil {
		resp.offset = *raw.Offset
	}

	perPage := initial.rowsPerPage
	w := paging.Split(rows, perPage, dir)
	resp.rows, resp.hasNext = w.Items, w.HasNext

	if resp.pageNumber > 1 {
		resp.hasPrevious = true
		var key json.RawMessage
		var docID *string
		switch {
		case len(w.Items) > 0:
			key, docID = rowAnchor(w.Items[0])
		case meta != nil:
			// rows vanished since the token was issued, step back from where this page starts
			key, docID = meta.params.startKey, meta.params.startKeyDocID
		}
		resp.previous = &PageMetadata[K, V]{
			Direction:  paging.Backward,
			PageNumber: resp.pageNumber - 1,
			params:     backwardParams(initial, key, docID),
		}
	}

	if w.HasNext {
		key, docID := rowAnchor(*w.Sentinel)
		if key == nil && docID == nil {
			return nil, ecode.Decode("row", errors.New("next page boundary row has neither key nor id"))
		}
		resp.next = &PageMetadata[K, V]{
			Direction:  paging.Forward,
			PageNumber: resp.pageNumber + 1,
			params:     forwardParams(initial, key, docID),
		}
	}

	resp.firstRow, resp.lastRow = paging.Range(resp.pageNumber, perPage, resultRows, resp.hasNext, resp.totalRows)
	return resp, nil
}

// Rows returns the rows of the page in display order
func (r *Response[K, V]) Rows() []Row[K, V] { return r.rows }

// Keys decodes the key of every row
func (r *Response[K, V]) Keys() ([]K, error) {
	out := make([]K, 0, len(r.rows))
	for _, row := range r.rows {
		k, err := row.Key()
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Values decodes the value of every row
func (r *Response[K, V]) Values() ([]V, error) {
	out := make([]V, 0, len(r.rows))
	for _, row := range r.rows {
		v, err := row.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Docs returns the included documents. Rows without a document are
// skipped. It fails with ErrIllegalState unless include_docs is on.
func (r *Response[K, V]) Docs() ([]Document, error) {
	return DocsAs[Document](r)
}

// DocsAs decodes the included documents of a response into D
func DocsAs[D, K, V any](r *Response[K, V]) ([]D, error) {
	if !r.request.endpoint.isAllDocs() && !r.request.params.IncludeDocs() {
		return nil, ecode.IllegalState("documents are not available when include_docs is false")
	}
	out := make([]D, 0, len(r.rows))
	for _, row := range r.rows {
		var d D
		ok, err := row.DocumentInto(&d)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// HasNextPage reports whether a page follows this one
func (r *Response[K, V]) HasNextPage() bool { return r.hasNext }

// HasPreviousPage reports whether a page precedes this one
func (r *Response[K, V]) HasPreviousPage() bool { return r.hasPrevious }

// PageNumber returns the 1-based page number
func (r *Response[K, V]) PageNumber() int64 { return r.pageNumber }

// FirstRowCount returns the 1-based position of the first row of the page
func (r *Response[K, V]) FirstRowCount() int64 { return r.firstRow }

// LastRowCount returns the 1-based position of the last row of the page
func (r *Response[K, V]) LastRowCount() int64 { return r.lastRow }

// TotalRowCount returns total_rows of the server, or the number of rows
// received when the server does not report it
func (r *Response[K, V]) TotalRowCount() int64 { return r.totalRows }

// Offset returns the server offset of the first row received
func (r *Response[K, V]) Offset() int64 { return r.offset }

// UpdateSeq returns the raw update_seq, nil unless requested
func (r *Response[K, V]) UpdateSeq() json.RawMessage { return r.updateSeq }

// NextPageMetadata returns the metadata of the following page, nil on the last page
func (r *Response[K, V]) NextPageMetadata() *PageMetadata[K, V] { return r.next }

// PreviousPageMetadata returns the metadata of the preceding page, nil on page 1
func (r *Response[K, V]) PreviousPageMetadata() *PageMetadata[K, V] { return r.previous }

// NextPage fetches the following page. It returns nil on the last page.
func (r *Response[K, V]) NextPage(ctx context.Context) (*Response[K, V], error) {
	if !r.hasNext {
		return nil, nil
	}
	return r.request.page(ctx, r.next)
}

// PreviousPage fetches the preceding page. It returns nil on page 1.
func (r *Response[K, V]) PreviousPage(ctx context.Context) (*Response[K, V], error) {
	if !r.hasPrevious {
		return nil, nil
	}
	return r.request.page(ctx, r.previous)
}

// NextPageToken returns a token for the following page, empty on the last page
func (r *Response[K, V]) NextPageToken() (string, error) {
	if !r.hasNext {
		return "", nil
	}
	return r.next.token(r.request.endpoint.String())
}

// PreviousPageToken returns a token for the preceding page, empty on page 1
func (r *Response[K, V]) PreviousPageToken() (string, error) {
	if !r.hasPrevious {
		return "", nil
	}
	return r.previous.token(r.request.endpoint.String())
}

// Pages walks forward from this page to the last one. Each page is fetched
// when the loop asks for it; an error ends the walk.
func (r *Response[K, V]) Pages(ctx context.Context) iter.Seq2[*Response[K, V], error] {
	return func(yield func(*Response[K, V], error) bool) {
		for page := r; page != nil; {
			if !yield(page, nil) {
				return
			}
			next, err := page.NextPage(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			page = next
		}
	}
}
