package view

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ncobase/couchview/ecode"
)

// Document is a database document as a generic JSON object
type Document map[string]any

// ID returns the _id field
func (d Document) ID() string {
	s, _ := d["_id"].(string)
	return s
}

// Rev returns the _rev field
func (d Document) Rev() string {
	s, _ := d["_rev"].(string)
	return s
}

// Deleted reports the _deleted field
func (d Document) Deleted() bool {
	b, _ := d["_deleted"].(bool)
	return b
}

type rawRow struct {
	ID    *string         `json:"id,omitempty"`
	Key   json.RawMessage `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Doc   json.RawMessage `json:"doc,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Row is one row of a view result. Key, value and document are decoded on
// every call.
type Row[K, V any] struct {
	raw     rawRow
	allDocs bool
}

func newRow[K, V any](raw json.RawMessage, allDocs bool) (Row[K, V], error) {
	r := Row[K, V]{allDocs: allDocs}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return r, ecode.Decode("row", fmt.Errorf("expected an object, got %s", truncateJSON(raw)))
	}
	if err := json.Unmarshal(raw, &r.raw); err != nil {
		return r, ecode.Decode("row", err)
	}
	return r, nil
}

func truncateJSON(raw json.RawMessage) string {
	s := string(bytes.TrimSpace(raw))
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	if s == "" {
		s = "nothing"
	}
	return s
}

// ID returns the id of the emitting document, empty for reduced rows
func (r Row[K, V]) ID() string {
	if r.raw.ID == nil {
		return ""
	}
	return *r.raw.ID
}

// Key decodes the row key
func (r Row[K, V]) Key() (K, error) {
	return decode[K]("key", r.raw.Key)
}

// Value decodes the row value
func (r Row[K, V]) Value() (V, error) {
	return decode[V]("value", r.raw.Value)
}

// Error returns the row level error, e.g. not_found for a missing key
func (r Row[K, V]) Error() string {
	return r.raw.Error
}

// Document decodes the included document, nil when the row has none
func (r Row[K, V]) Document() (Document, error) {
	var doc Document
	ok, err := r.DocumentInto(&doc)
	if err != nil || !ok {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// DocumentInto decodes the included document into v and reports whether
// the row carried one. Rows of _all_docs without a document fall back to a
// sparse document built from id, rev and deleted flag.
func (r Row[K, V]) DocumentInto(v any) (bool, error) {
	raw := r.documentJSON()
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, ecode.Decode("doc", err)
	}
	return true, nil
}

func (r Row[K, V]) documentJSON() json.RawMessage {
	if !isNull(r.raw.Doc) {
		return r.raw.Doc
	}
	if !r.allDocs || isNull(r.raw.Value) {
		return nil
	}
	var rev Revision
	if err := json.Unmarshal(r.raw.Value, &rev); err != nil {
		return nil
	}
	sparse, err := json.Marshal(struct {
		ID      string `json:"_id"`
		Rev     string `json:"_rev"`
		Deleted bool   `json:"_deleted"`
	}{r.ID(), rev.Rev, rev.Deleted})
	if err != nil {
		return nil
	}
	return sparse
}

// rawKey returns the undecoded key, nil for JSON null
func (r Row[K, V]) rawKey() json.RawMessage {
	if isNull(r.raw.Key) {
		return nil
	}
	return r.raw.Key
}
