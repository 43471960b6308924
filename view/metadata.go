package view

import (
	"encoding/json"

	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/paging"
	"github.com/ncobase/couchview/types"
)

// PageMetadata locates one page of a paginated query: the direction it is
// read in, its number and the parameters that fetch it.
type PageMetadata[K, V any] struct {
	Direction  paging.Direction
	PageNumber int64
	params     *Parameters[K, V]
}

// Params returns a copy of the parameters that fetch the page
func (m *PageMetadata[K, V]) Params() *Parameters[K, V] {
	return m.params.Copy()
}

// forwardParams starts the page at the given row, docID nil for rows
// without a document id.
func forwardParams[K, V any](initial *Parameters[K, V], key json.RawMessage, docID *string) *Parameters[K, V] {
	p := initial.Copy()
	p.startKey = key
	p.startKeyDocID = docID
	return p
}

// backwardParams reads from the given row towards the start of the initial
// query. The reversed scan ends at the initial start so that page 1 is
// never overshot.
func backwardParams[K, V any](initial *Parameters[K, V], key json.RawMessage, docID *string) *Parameters[K, V] {
	p := forwardParams(initial, key, docID)
	p.descending = types.ToPointer(!initial.Descending())
	p.inclusiveEnd = types.ToPointer(true)
	if key != nil {
		p.endKey = initial.startKey
	}
	if docID != nil {
		p.endKeyDocID = initial.startKeyDocID
	}
	return p
}

func rowAnchor[K, V any](r Row[K, V]) (json.RawMessage, *string) {
	return r.rawKey(), r.raw.ID
}

// token serializes the page position. Only the options that page links
// change are carried; everything else comes from the initial query.
func (m *PageMetadata[K, V]) token(query string) (string, error) {
	return paging.EncodeToken(&paging.Token{
		Descending:    m.params.descending,
		EndKey:        m.params.endKey,
		EndKeyDocID:   m.params.endKeyDocID,
		InclusiveEnd:  m.params.inclusiveEnd,
		StartKey:      m.params.startKey,
		StartKeyDocID: m.params.startKeyDocID,
		PageNumber:    m.PageNumber,
		Direction:     m.Direction,
		Query:         query,
		KeyType:       typeName[K](),
		ValueType:     typeName[V](),
	})
}

// metadataFromToken merges a token onto a copy of the initial parameters
func metadataFromToken[K, V any](s, query string, initial *Parameters[K, V]) (*PageMetadata[K, V], error) {
	t, err := paging.DecodeToken(s)
	if err != nil {
		return nil, err
	}
	if err := t.CheckFingerprint(query, typeName[K](), typeName[V]()); err != nil {
		return nil, err
	}
	p := initial.Copy()
	p.descending = t.Descending
	p.endKey = t.EndKey
	p.endKeyDocID = t.EndKeyDocID
	p.inclusiveEnd = t.InclusiveEnd
	p.startKey = t.StartKey
	p.startKeyDocID = t.StartKeyDocID
	for field, raw := range map[string]json.RawMessage{"startkey": p.startKey, "endkey": p.endKey} {
		if _, err := decode[K](field, raw); err != nil {
			return nil, ecode.IncompatibleQuery("token %s does not fit the key type %s: %v", field, typeName[K](), err)
		}
	}
	return &PageMetadata[K, V]{
		Direction:  t.Direction,
		PageNumber: t.PageNumber,
		params:     p,
	}, nil
}
