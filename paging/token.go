package paging

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ncobase/couchview/ecode"
)

// Token is the serialized form of a page link: the parameters that differ
// from the page 1 query plus the page position. Short field names keep the
// encoded string compact.
type Token struct {
	Descending    *bool           `json:"d,omitempty"`
	EndKey        json.RawMessage `json:"e,omitempty"`
	EndKeyDocID   *string         `json:"ei,omitempty"`
	InclusiveEnd  *bool           `json:"i,omitempty"`
	StartKey      json.RawMessage `json:"s,omitempty"`
	StartKeyDocID *string         `json:"si,omitempty"`
	PageNumber    int64           `json:"n"`
	Direction     Direction       `json:"dr"`

	// best-effort fingerprint of the query the token was issued for
	Query     string `json:"q,omitempty"`
	KeyType   string `json:"kt,omitempty"`
	ValueType string `json:"vt,omitempty"`
}

// EncodeToken returns the opaque base64url form of t
func EncodeToken(t *Token) (string, error) {
	if t == nil {
		return "", errors.New("nil token")
	}
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeToken parses a string produced by EncodeToken.
// Padded input is accepted as well.
func DecodeToken(s string) (*Token, error) {
	if s == "" {
		return nil, ecode.InvalidToken(errors.New(ecode.FieldIsBlank("token")))
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		if b, err = base64.URLEncoding.DecodeString(s); err != nil {
			return nil, ecode.InvalidToken(err)
		}
	}
	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, ecode.InvalidToken(err)
	}
	if !t.Direction.Valid() {
		return nil, ecode.InvalidToken(errors.New(ecode.FieldIsInvalid("direction")))
	}
	if t.PageNumber < 1 {
		return nil, ecode.InvalidToken(errors.New(ecode.FieldIsInvalid("page number")))
	}
	return &t, nil
}

// CheckFingerprint compares the token fingerprint with the query it is
// redeemed against. Empty fingerprint fields are not compared.
func (t *Token) CheckFingerprint(query, keyType, valueType string) error {
	if t.Query != "" && t.Query != query {
		return ecode.IncompatibleQuery("%s: %q, query %q", ecode.Mismatch("view"), t.Query, query)
	}
	if t.KeyType != "" && t.KeyType != keyType {
		return ecode.IncompatibleQuery("%s: %s, query %s", ecode.Mismatch("key type"), t.KeyType, keyType)
	}
	if t.ValueType != "" && t.ValueType != valueType {
		return ecode.IncompatibleQuery("%s: %s, query %s", ecode.Mismatch("value type"), t.ValueType, valueType)
	}
	return nil
}
