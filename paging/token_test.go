package paging

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ncobase/couchview/ecode"
)

func TestTokenRoundTrip(t *testing.T) {
	desc := true
	docID := "doc-11"
	in := &Token{
		Descending:    &desc,
		StartKey:      json.RawMessage(`[2010,"title"]`),
		StartKeyDocID: &docID,
		PageNumber:    3,
		Direction:     Backward,
		Query:         "films/by_year",
		KeyType:       "[]interface {}",
	}

	s, err := EncodeToken(in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.ContainsAny(s, "+/=") {
		t.Errorf("expected url safe unpadded token, got %q", s)
	}

	out, err := DecodeToken(s)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.PageNumber != 3 || out.Direction != Backward {
		t.Errorf("unexpected position %d %s", out.PageNumber, out.Direction)
	}
	if out.Descending == nil || !*out.Descending {
		t.Errorf("expected descending true")
	}
	if string(out.StartKey) != `[2010,"title"]` {
		t.Errorf("unexpected start key %s", out.StartKey)
	}
	if out.StartKeyDocID == nil || *out.StartKeyDocID != "doc-11" {
		t.Errorf("unexpected start key doc id %v", out.StartKeyDocID)
	}
	if out.EndKey != nil || out.InclusiveEnd != nil {
		t.Errorf("expected unset fields to stay unset")
	}
}

func TestTokenShortFieldNames(t *testing.T) {
	s, err := EncodeToken(&Token{PageNumber: 2, Direction: Forward, StartKey: json.RawMessage(`11`)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	raw, _ := base64.RawURLEncoding.DecodeString(s)
	if string(raw) != `{"s":11,"n":2,"dr":"F"}` {
		t.Errorf("unexpected token json %s", raw)
	}
}

func TestDecodeTokenInvalid(t *testing.T) {
	enc := func(v string) string { return base64.RawURLEncoding.EncodeToString([]byte(v)) }
	cases := map[string]string{
		"empty":          "",
		"not base64":     "!!!",
		"not json":       enc("hello"),
		"bad direction":  enc(`{"n":1,"dr":"X"}`),
		"zero page":      enc(`{"n":0,"dr":"F"}`),
		"missing fields": enc(`{}`),
	}
	for name, in := range cases {
		if _, err := DecodeToken(in); !errors.Is(err, ecode.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestDecodeTokenAcceptsPadding(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte(`{"n":2,"dr":"F"}`))
	if _, err := DecodeToken(padded); err != nil {
		t.Errorf("expected padded token to decode, got %v", err)
	}
}

func TestCheckFingerprint(t *testing.T) {
	tok := &Token{Query: "d/v", KeyType: "int", ValueType: "string"}
	if err := tok.CheckFingerprint("d/v", "int", "string"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := tok.CheckFingerprint("d/other", "int", "string"); !errors.Is(err, ecode.ErrIncompatibleQuery) {
		t.Errorf("expected view mismatch, got %v", err)
	}
	if err := tok.CheckFingerprint("d/v", "string", "string"); !errors.Is(err, ecode.ErrIncompatibleQuery) {
		t.Errorf("expected key type mismatch, got %v", err)
	}
	if err := (&Token{}).CheckFingerprint("x", "y", "z"); err != nil {
		t.Errorf("expected empty fingerprint to pass, got %v", err)
	}
}
