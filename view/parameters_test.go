package view

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/ncobase/couchview/ecode"
)

func TestToRequestGet(t *testing.T) {
	p := NewParameters[[]any, int]()
	if err := p.SetStartKey([]any{2010, "Alien"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	p.SetStartKeyDocID("doc/1")
	p.SetDescending(false)
	p.SetStale("ok")

	method, target, body, err := p.ToRequest("http://couch.test/films/_design/f/_view/v")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != "GET" || body != nil {
		t.Errorf("expected GET without body, got %s %s", method, body)
	}
	u, _ := url.Parse(target)
	q := u.Query()
	if q.Get("startkey") != `[2010,"Alien"]` {
		t.Errorf("expected JSON start key, got %q", q.Get("startkey"))
	}
	if q.Get("startkey_docid") != "doc/1" {
		t.Errorf("expected raw doc id, got %q", q.Get("startkey_docid"))
	}
	if q.Get("descending") != "false" {
		t.Errorf("expected explicit false to be sent, got %q", q.Get("descending"))
	}
	if q.Get("stale") != "ok" {
		t.Errorf("expected stale ok, got %q", q.Get("stale"))
	}
	for _, unset := range []string{"limit", "skip", "reduce", "inclusive_end", "endkey", "key", "keys"} {
		if q.Has(unset) {
			t.Errorf("expected %s to be omitted", unset)
		}
	}
}

func TestToRequestNoOptions(t *testing.T) {
	_, target, _, err := NewParameters[string, string]().ToRequest("http://couch.test/films/_all_docs")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if target != "http://couch.test/films/_all_docs" {
		t.Errorf("expected bare endpoint, got %q", target)
	}
}

func TestToRequestPostKeys(t *testing.T) {
	p := NewParameters[int, string]()
	if err := p.SetKeys(1, 2, 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	p.SetIncludeDocs(true)

	method, target, body, err := p.ToRequest("http://couch.test/v")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != "POST" {
		t.Errorf("expected POST, got %s", method)
	}
	if string(body) != `{"keys":[1,2,3]}` {
		t.Errorf("unexpected body %s", body)
	}
	if strings.Contains(target, "keys") || !strings.Contains(target, "include_docs=true") {
		t.Errorf("expected keys in body only, got %s", target)
	}
}

func TestSetKeys(t *testing.T) {
	p := NewParameters[string, string]()
	if err := p.SetKeys("a", "b"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := p.SetKeys("only"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.keys != nil || string(p.key) != `"only"` {
		t.Errorf("expected a single key to replace keys, got key=%s keys=%v", p.key, p.keys)
	}
	keys, err := p.Keys()
	if err != nil || len(keys) != 1 || keys[0] != "only" {
		t.Errorf("unexpected keys %v, %v", keys, err)
	}

	_ = p.SetKeys("x", "y")
	if p.key != nil || len(p.keys) != 2 {
		t.Errorf("expected keys to replace key")
	}
	keys, _ = p.Keys()
	if len(keys) != 2 || keys[1] != "y" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestSetRowsPerPage(t *testing.T) {
	p := NewParameters[int, int]()
	for _, n := range []int{0, -3} {
		if err := p.SetRowsPerPage(n); !errors.Is(err, ecode.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for %d, got %v", n, err)
		}
	}
	if err := p.SetRowsPerPage(10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if limit, ok := p.Limit(); !ok || limit != 11 {
		t.Errorf("expected limit 11, got %d", limit)
	}
	if p.RowsPerPage() != 10 {
		t.Errorf("expected 10 rows per page, got %d", p.RowsPerPage())
	}
}

func TestParameterDefaults(t *testing.T) {
	p := NewParameters[int, int]()
	if p.Descending() || p.IncludeDocs() || !p.InclusiveEnd() || !p.Reduce() {
		t.Errorf("unexpected defaults")
	}
	if _, ok := p.Limit(); ok {
		t.Errorf("expected no limit")
	}
	if _, ok, err := p.StartKey(); ok || err != nil {
		t.Errorf("expected unset start key")
	}
	_ = p.SetEndKey(7)
	p.SetEndKeyDocID("doc-7")
	if k, ok, err := p.EndKey(); !ok || err != nil || k != 7 || p.EndKeyDocID() != "doc-7" {
		t.Errorf("unexpected end key %d", k)
	}
}

func TestParametersCopy(t *testing.T) {
	p := NewParameters[int, int]()
	_ = p.SetKeys(1, 2)
	p.SetDescending(true)

	c := p.Copy()
	c.SetDescending(false)
	c.keys[0] = json.RawMessage("9")

	if !p.Descending() {
		t.Errorf("expected original descending to be kept")
	}
	if string(p.keys[0]) != "1" {
		t.Errorf("expected original keys to be kept, got %s", p.keys[0])
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func() error{
		"stale": func() error {
			p := NewParameters[int, int]()
			p.SetStale("later")
			return p.Validate()
		},
		"update": func() error {
			p := NewParameters[int, int]()
			p.SetUpdate("sometimes")
			return p.Validate()
		},
		"group level with scalar keys": func() error {
			p := NewParameters[int, int]()
			_ = p.SetGroupLevel(1)
			return p.Validate()
		},
		"include docs with reduce": func() error {
			p := NewParameters[int, int]()
			p.SetIncludeDocs(true)
			p.SetReduce(true)
			return p.Validate()
		},
		"group without reduce": func() error {
			p := NewParameters[int, int]()
			p.SetGroup(true)
			p.SetReduce(false)
			return p.Validate()
		},
		"keys with pagination": func() error {
			p := NewParameters[int, int]()
			_ = p.SetKeys(1, 2)
			_ = p.SetRowsPerPage(5)
			return p.Validate()
		},
		"skip with pagination": func() error {
			p := NewParameters[int, int]()
			_ = p.SetSkip(3)
			_ = p.SetRowsPerPage(5)
			return p.Validate()
		},
		"negative limit": func() error {
			return NewParameters[int, int]().SetLimit(-1)
		},
		"negative skip": func() error {
			return NewParameters[int, int]().SetSkip(-1)
		},
		"negative group level": func() error {
			return NewParameters[[]any, int]().SetGroupLevel(-1)
		},
	}
	for name, fn := range cases {
		if err := fn(); !errors.Is(err, ecode.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	p := NewParameters[[]any, int]()
	_ = p.SetGroupLevel(2)
	p.SetStale("update_after")
	p.SetUpdate("lazy")
	p.SetIncludeDocs(false)
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid parameters, got %v", err)
	}

	q := NewParameters[json.RawMessage, any]()
	_ = q.SetGroupLevel(1)
	if err := q.Validate(); err != nil {
		t.Errorf("expected raw keys to allow group_level, got %v", err)
	}
}

func TestSetKeyRejectsUnencodable(t *testing.T) {
	p := NewParameters[any, any]()
	if err := p.SetStartKey(func() {}); !errors.Is(err, ecode.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
