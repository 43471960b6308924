package view

import (
	"context"
	"encoding/json"

	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/log"
	"github.com/ncobase/couchview/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Request is a frozen view query. It is safe for concurrent use.
type Request[K, V any] struct {
	db       *Database
	endpoint endpoint
	params   *Parameters[K, V]
}

// Parameters returns a copy of the query parameters
func (r *Request[K, V]) Parameters() *Parameters[K, V] {
	return r.params.Copy()
}

// Response fetches the first page, or the whole result when the query is
// not paginated.
func (r *Request[K, V]) Response(ctx context.Context) (*Response[K, V], error) {
	return r.page(ctx, nil)
}

// ResponseWithToken fetches the page a token from NextPageToken or
// PreviousPageToken points to. The token must come from a response of an
// equivalent request.
func (r *Request[K, V]) ResponseWithToken(ctx context.Context, token string) (*Response[K, V], error) {
	meta, err := metadataFromToken(token, r.endpoint.String(), r.params)
	if err != nil {
		return nil, err
	}
	return r.page(ctx, meta)
}

// SingleValue returns the first value of the result, the zero value when
// the result has no rows. Useful for reduced views.
func (r *Request[K, V]) SingleValue(ctx context.Context) (V, error) {
	var zero V
	resp, err := r.Response(ctx)
	if err != nil {
		return zero, err
	}
	if len(resp.rows) == 0 {
		return zero, nil
	}
	return resp.rows[0].Value()
}

type rawResponse struct {
	TotalRows *int64            `json:"total_rows,omitempty"`
	Offset    *int64            `json:"offset,omitempty"`
	Rows      []json.RawMessage `json:"rows"`
	UpdateSeq json.RawMessage   `json:"update_seq,omitempty"`
}

func (r *Request[K, V]) page(ctx context.Context, meta *PageMetadata[K, V]) (resp *Response[K, V], err error) {
	p := r.params
	var pageNumber int64 = 1
	if meta != nil {
		p, pageNumber = meta.params, meta.PageNumber
	}

	ctx, span := tracing.StartSpan(ctx, "view "+r.endpoint.String(),
		attribute.String("couchdb.view", r.endpoint.String()),
		attribute.Int64("couchdb.page", pageNumber),
	)
	defer func() { tracing.EndSpan(span, err) }()

	method, target, body, err := p.ToRequest(r.db.endpointURL(r.endpoint))
	if err != nil {
		return nil, err
	}
	b, err := r.db.do(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	var raw rawResponse
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, ecode.Decode("response", err)
	}
	if resp, err = newResponse(r, &raw, meta); err != nil {
		return nil, err
	}
	if log.IsDebug() {
		log.EntryWithFields(ctx, logrus.Fields{
			log.ComponentKey: "view",
			"endpoint":       r.endpoint.String(),
			"page":           pageNumber,
			"rows":           len(resp.rows),
		}).Debug("page fetched")
	}
	return resp, nil
}
