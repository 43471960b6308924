package view

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/net/client"
)

const testServer = "http://couch.test:5984"

type fakeDoc struct {
	id    string
	key   int
	value string
}

// fakeServer answers view, _all_docs and batched queries from memory
// following CouchDB collation for integer keys.
type fakeServer struct {
	mu               sync.Mutex
	docs             []fakeDoc
	requests         []*client.Request
	multiUnsupported bool
}

// newFakeServer holds one document per key, ids doc-01, doc-02, ...
func newFakeServer(keys ...int) *fakeServer {
	s := &fakeServer{}
	for i, k := range keys {
		s.docs = append(s.docs, fakeDoc{id: fmt.Sprintf("doc-%02d", i+1), key: k, value: fmt.Sprintf("v%d", k)})
	}
	s.sort()
	return s
}

// newSeqServer holds n documents with keys 1..n
func newSeqServer(n int) *fakeServer {
	keys := make([]int, n)
	for i := range keys {
		keys[i] = i + 1
	}
	return newFakeServer(keys...)
}

func (s *fakeServer) sort() {
	slices.SortFunc(s.docs, func(a, b fakeDoc) int {
		if a.key != b.key {
			return a.key - b.key
		}
		return strings.Compare(a.id, b.id)
	})
}

func (s *fakeServer) truncate(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = s.docs[:n]
}

func (s *fakeServer) lastRequest() *client.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *fakeServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *fakeServer) Do(_ context.Context, req *client.Request) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, s.remote(req, http.StatusBadRequest, "bad_request", err.Error())
	}
	fields := make(map[string]json.RawMessage)
	for name, vs := range u.Query() {
		v := vs[0]
		if name == "startkey_docid" || name == "endkey_docid" || name == "stale" || name == "update" {
			b, _ := json.Marshal(v)
			fields[name] = b
			continue
		}
		fields[name] = json.RawMessage(v)
	}
	var body map[string]json.RawMessage
	if len(req.Body) > 0 {
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return nil, s.remote(req, http.StatusBadRequest, "bad_request", "invalid body")
		}
	}

	isQueries := strings.HasSuffix(u.Path, "/queries")
	if isQueries && s.multiUnsupported {
		return nil, s.remote(req, http.StatusInternalServerError, "badmatch", "{not_found,missing}")
	}
	if queries, ok := body["queries"]; ok {
		if req.Method != http.MethodPost {
			return nil, s.remote(req, http.StatusMethodNotAllowed, "method_not_allowed", "")
		}
		return s.multi(req, queries)
	}
	for k, v := range body {
		fields[k] = v
	}
	q, err := parseFakeQuery(fields)
	if err != nil {
		return nil, s.remote(req, http.StatusBadRequest, "query_parse_error", err.Error())
	}
	return json.Marshal(s.result(q))
}

func (s *fakeServer) multi(req *client.Request, raw json.RawMessage) ([]byte, error) {
	var queries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &queries); err != nil {
		return nil, s.remote(req, http.StatusBadRequest, "bad_request", err.Error())
	}
	results := make([]map[string]any, 0, len(queries))
	for _, fields := range queries {
		q, err := parseFakeQuery(fields)
		if err != nil {
			return nil, s.remote(req, http.StatusBadRequest, "query_parse_error", err.Error())
		}
		results = append(results, s.result(q))
	}
	return json.Marshal(map[string]any{"results": results})
}

func (s *fakeServer) remote(req *client.Request, status int, code, reason string) error {
	return &ecode.RemoteError{Status: status, Method: req.Method, URL: req.URL, Code: code, Reason: reason}
}

type fakeQuery struct {
	descending   bool
	startKey     *int
	startDocID   *string
	endKey       *int
	endDocID     *string
	inclusiveEnd bool
	limit        int
	skip         int
	key          *int
	keys         []int
	hasKeys      bool
	includeDocs  bool
}

func parseFakeQuery(fields map[string]json.RawMessage) (*fakeQuery, error) {
	q := &fakeQuery{inclusiveEnd: true, limit: -1}
	for name, raw := range fields {
		var err error
		switch name {
		case "descending":
			err = json.Unmarshal(raw, &q.descending)
		case "startkey":
			q.startKey = new(int)
			err = json.Unmarshal(raw, q.startKey)
		case "startkey_docid":
			q.startDocID = new(string)
			err = json.Unmarshal(raw, q.startDocID)
		case "endkey":
			q.endKey = new(int)
			err = json.Unmarshal(raw, q.endKey)
		case "endkey_docid":
			q.endDocID = new(string)
			err = json.Unmarshal(raw, q.endDocID)
		case "inclusive_end":
			err = json.Unmarshal(raw, &q.inclusiveEnd)
		case "limit":
			err = json.Unmarshal(raw, &q.limit)
		case "skip":
			err = json.Unmarshal(raw, &q.skip)
		case "key":
			q.key = new(int)
			err = json.Unmarshal(raw, q.key)
		case "keys":
			q.hasKeys = true
			err = json.Unmarshal(raw, &q.keys)
		case "include_docs":
			err = json.Unmarshal(raw, &q.includeDocs)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return q, nil
}

func compareDoc(d fakeDoc, key int, docID *string) int {
	if d.key != key {
		if d.key < key {
			return -1
		}
		return 1
	}
	if docID == nil {
		return 0
	}
	return strings.Compare(d.id, *docID)
}

func (q *fakeQuery) sign() int {
	if q.descending {
		return -1
	}
	return 1
}

func (q *fakeQuery) afterStart(d fakeDoc) bool {
	return q.startKey == nil || q.sign()*compareDoc(d, *q.startKey, q.startDocID) >= 0
}

func (q *fakeQuery) beforeEnd(d fakeDoc) bool {
	if q.endKey == nil {
		return true
	}
	c := q.sign() * compareDoc(d, *q.endKey, q.endDocID)
	if q.inclusiveEnd {
		return c <= 0
	}
	return c < 0
}

type fakeRow struct {
	ID    string         `json:"id"`
	Key   int            `json:"key"`
	Value string         `json:"value"`
	Doc   map[string]any `json:"doc,omitempty"`
}

func (s *fakeServer) result(q *fakeQuery) map[string]any {
	ordered := slices.Clone(s.docs)
	if q.descending {
		slices.Reverse(ordered)
	}

	var selected []fakeDoc
	offset := 0
	if q.hasKeys || q.key != nil {
		keys := q.keys
		if q.key != nil {
			keys = []int{*q.key}
		}
		for _, k := range keys {
			for _, d := range ordered {
				if d.key == k {
					selected = append(selected, d)
				}
			}
		}
	} else {
		for i, d := range ordered {
			if !q.afterStart(d) || !q.beforeEnd(d) {
				continue
			}
			if selected == nil {
				offset = i
			}
			selected = append(selected, d)
		}
	}

	skip := min(q.skip, len(selected))
	selected = selected[skip:]
	offset += skip
	if q.limit >= 0 && q.limit < len(selected) {
		selected = selected[:q.limit]
	}

	rows := make([]fakeRow, 0, len(selected))
	for _, d := range selected {
		r := fakeRow{ID: d.id, Key: d.key, Value: d.value}
		if q.includeDocs {
			r.Doc = map[string]any{"_id": d.id, "_rev": "1-" + d.id, "title": d.value}
		}
		rows = append(rows, r)
	}
	return map[string]any{"total_rows": len(s.docs), "offset": offset, "rows": rows}
}

func newTestDB(t *testing.T, d client.Dispatcher) *Database {
	t.Helper()
	db, err := NewDatabase(d, testServer, "films")
	if err != nil {
		t.Fatalf("expected no error creating database, got %v", err)
	}
	return db
}

func mustBuild[K, V any](t *testing.T, b *Builder[K, V]) *Request[K, V] {
	t.Helper()
	req, err := b.Build()
	if err != nil {
		t.Fatalf("expected no build error, got %v", err)
	}
	return req
}

func keysOf(t *testing.T, resp *Response[int, string]) []int {
	t.Helper()
	keys, err := resp.Keys()
	if err != nil {
		t.Fatalf("expected no error decoding keys, got %v", err)
	}
	return keys
}

func seq(from, to int) []int {
	out := []int{}
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func queryOf(t *testing.T, req *client.Request) url.Values {
	t.Helper()
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
	return u.Query()
}
