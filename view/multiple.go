package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ncobase/couchview/consts"
	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/log"
)

// MultipleRequest runs several queries on one view in a single round trip.
// Results are never paginated.
type MultipleRequest[K, V any] struct {
	db       *Database
	endpoint endpoint
	queries  []*Parameters[K, V]
	err      error
}

// NewMultipleRequest starts a batch of queries on design/view
func NewMultipleRequest[K, V any](db *Database, design, view string) *MultipleRequest[K, V] {
	m := &MultipleRequest[K, V]{db: db}
	m.endpoint, m.err = newEndpoint(design, view)
	return m
}

// Add appends a query. Paginated parameters are rejected.
func (m *MultipleRequest[K, V]) Add(p *Parameters[K, V]) *MultipleRequest[K, V] {
	if m.err != nil {
		return m
	}
	switch {
	case p == nil:
		m.err = ecode.InvalidArgument("%s", ecode.FieldIsRequired("parameters"))
	case p.RowsPerPage() > 0:
		m.err = ecode.InvalidArgument("queries of a multiple request can not be paginated")
	default:
		if err := p.Validate(); err != nil {
			m.err = err
			return m
		}
		m.queries = append(m.queries, p.Copy())
	}
	return m
}

// Query adds the options collected by fn on a fresh parameter set
func (m *MultipleRequest[K, V]) Query(fn func(b *Builder[K, V])) *MultipleRequest[K, V] {
	b := &Builder[K, V]{db: m.db, endpoint: m.endpoint, params: NewParameters[K, V]()}
	fn(b)
	if b.err != nil {
		if m.err == nil {
			m.err = b.err
		}
		return m
	}
	return m.Add(b.params)
}

// Responses posts all queries and returns one response per query, in the
// order they were added.
func (m *MultipleRequest[K, V]) Responses(ctx context.Context) ([]*Response[K, V], error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.db == nil {
		return nil, ecode.InvalidArgument("%s", ecode.FieldIsRequired("database"))
	}
	if len(m.queries) == 0 {
		return nil, ecode.InvalidArgument("%s", ecode.FieldIsRequired("queries"))
	}

	queries := make([]*wireParams, 0, len(m.queries))
	for _, p := range m.queries {
		queries = append(queries, p.wire())
	}
	body, err := json.Marshal(struct {
		Queries []*wireParams `json:"queries"`
	}{queries})
	if err != nil {
		return nil, ecode.InvalidArgument("encode queries: %v", err)
	}

	b, err := m.db.do(ctx, http.MethodPost, m.db.endpointURL(m.endpoint, consts.QueriesPath), body)
	if isBadMatch(err) {
		// servers without the queries endpoint take the batch on the view itself
		log.Debugf(ctx, "multiple query endpoint unsupported on %s, posting to the view", m.endpoint)
		b, err = m.db.do(ctx, http.MethodPost, m.db.endpointURL(m.endpoint), body)
	}
	if err != nil {
		return nil, err
	}

	var raw struct {
		Results []rawResponse `json:"results"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, ecode.Decode("results", err)
	}
	if len(raw.Results) != len(m.queries) {
		return nil, ecode.Decode("results", fmt.Errorf("%d results for %d queries", len(raw.Results), len(m.queries)))
	}

	out := make([]*Response[K, V], 0, len(m.queries))
	for i, p := range m.queries {
		req := &Request[K, V]{db: m.db, endpoint: m.endpoint, params: p}
		resp, err := newResponse(req, &raw.Results[i], nil)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		out = append(out, resp)
	}
	return out, nil
}

func isBadMatch(err error) bool {
	var re *ecode.RemoteError
	if !ecode.IsRemote(err, http.StatusInternalServerError) {
		return false
	}
	return errors.As(err, &re) && re.Code == consts.BadMatch
}
