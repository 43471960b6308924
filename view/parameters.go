package view

import (
	"encoding/json"
	"net/url"
	"reflect"
	"slices"

	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-querystring/query"
)

var validate = validator.New()

// Parameters is the set of options of one view query. Key typed options are
// held as raw JSON and decoded into K when read back.
// The zero value is an empty query with server defaults.
type Parameters[K, V any] struct {
	descending    *bool
	endKey        json.RawMessage
	endKeyDocID   *string
	group         *bool
	groupLevel    *int
	includeDocs   *bool
	inclusiveEnd  *bool
	key           json.RawMessage
	keys          []json.RawMessage
	limit         *int
	reduce        *bool
	skip          *int64
	stable        *bool
	stale         string
	startKey      json.RawMessage
	startKeyDocID *string
	update        string
	rowsPerPage   int
}

// NewParameters returns an empty parameter set
func NewParameters[K, V any]() *Parameters[K, V] {
	return &Parameters[K, V]{}
}

// Copy returns an independent parameter set. Raw JSON values are shared,
// they are never modified in place.
func (p *Parameters[K, V]) Copy() *Parameters[K, V] {
	c := *p
	c.keys = slices.Clone(p.keys)
	return &c
}

func (p *Parameters[K, V]) SetDescending(v bool)      { p.descending = types.ToPointer(v) }
func (p *Parameters[K, V]) SetEndKeyDocID(v string)   { p.endKeyDocID = types.ToPointer(v) }
func (p *Parameters[K, V]) SetGroup(v bool)           { p.group = types.ToPointer(v) }
func (p *Parameters[K, V]) SetIncludeDocs(v bool)     { p.includeDocs = types.ToPointer(v) }
func (p *Parameters[K, V]) SetInclusiveEnd(v bool)    { p.inclusiveEnd = types.ToPointer(v) }
func (p *Parameters[K, V]) SetReduce(v bool)          { p.reduce = types.ToPointer(v) }
func (p *Parameters[K, V]) SetStable(v bool)          { p.stable = types.ToPointer(v) }
func (p *Parameters[K, V]) SetStale(v string)         { p.stale = v }
func (p *Parameters[K, V]) SetStartKeyDocID(v string) { p.startKeyDocID = types.ToPointer(v) }
func (p *Parameters[K, V]) SetUpdate(v string)        { p.update = v }

// SetGroupLevel sets group_level, negative levels are rejected
func (p *Parameters[K, V]) SetGroupLevel(v int) error {
	if v < 0 {
		return ecode.InvalidArgument("%s: %d", ecode.FieldIsInvalid("group_level"), v)
	}
	p.groupLevel = types.ToPointer(v)
	return nil
}

// SetLimit sets limit, negative limits are rejected
func (p *Parameters[K, V]) SetLimit(v int) error {
	if v < 0 {
		return ecode.InvalidArgument("%s: %d", ecode.FieldIsInvalid("limit"), v)
	}
	p.limit = types.ToPointer(v)
	return nil
}

// SetSkip sets skip, negative values are rejected
func (p *Parameters[K, V]) SetSkip(v int64) error {
	if v < 0 {
		return ecode.InvalidArgument("%s: %d", ecode.FieldIsInvalid("skip"), v)
	}
	p.skip = types.ToPointer(v)
	return nil
}

// SetRowsPerPage turns on pagination. The query limit becomes n+1 so that
// the first row of the following page is fetched along.
func (p *Parameters[K, V]) SetRowsPerPage(n int) error {
	if n < 1 {
		return ecode.InvalidArgument("rows per page must be at least 1, got %d", n)
	}
	p.rowsPerPage = n
	p.limit = types.ToPointer(n + 1)
	return nil
}

// SetKey restricts the query to a single key
func (p *Parameters[K, V]) SetKey(k K) error {
	raw, err := marshalKey("key", k)
	if err != nil {
		return err
	}
	p.key, p.keys = raw, nil
	return nil
}

// SetKeys restricts the query to the given keys. A single key is sent as
// key, several keys as keys.
func (p *Parameters[K, V]) SetKeys(keys ...K) error {
	switch len(keys) {
	case 0:
		p.key, p.keys = nil, nil
		return nil
	case 1:
		return p.SetKey(keys[0])
	}
	raws := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		raw, err := marshalKey("keys", k)
		if err != nil {
			return err
		}
		raws = append(raws, raw)
	}
	p.key, p.keys = nil, raws
	return nil
}

// SetStartKey sets startkey
func (p *Parameters[K, V]) SetStartKey(k K) error {
	raw, err := marshalKey("startkey", k)
	if err != nil {
		return err
	}
	p.startKey = raw
	return nil
}

// SetEndKey sets endkey
func (p *Parameters[K, V]) SetEndKey(k K) error {
	raw, err := marshalKey("endkey", k)
	if err != nil {
		return err
	}
	p.endKey = raw
	return nil
}

// Descending reports the read order, false unless set
func (p *Parameters[K, V]) Descending() bool { return types.ToValue(p.descending) }

// IncludeDocs reports whether documents are requested along with the rows
func (p *Parameters[K, V]) IncludeDocs() bool { return types.ToValue(p.includeDocs) }

// InclusiveEnd reports whether endkey is part of the range, true unless set
func (p *Parameters[K, V]) InclusiveEnd() bool { return p.inclusiveEnd == nil || *p.inclusiveEnd }

// Reduce reports whether the reduce function runs, true unless set
func (p *Parameters[K, V]) Reduce() bool { return p.reduce == nil || *p.reduce }

// RowsPerPage returns the page size, 0 when the query is not paginated
func (p *Parameters[K, V]) RowsPerPage() int { return p.rowsPerPage }

// Limit returns the row limit sent to the server and whether one is set
func (p *Parameters[K, V]) Limit() (int, bool) {
	if p.limit == nil {
		return 0, false
	}
	return *p.limit, true
}

// StartKeyDocID returns startkey_docid, empty when unset
func (p *Parameters[K, V]) StartKeyDocID() string { return types.ToValue(p.startKeyDocID) }

// EndKeyDocID returns endkey_docid, empty when unset
func (p *Parameters[K, V]) EndKeyDocID() string { return types.ToValue(p.endKeyDocID) }

// StartKey decodes startkey. ok is false when it is unset.
func (p *Parameters[K, V]) StartKey() (k K, ok bool, err error) {
	return decodeOptional[K]("startkey", p.startKey)
}

// EndKey decodes endkey. ok is false when it is unset.
func (p *Parameters[K, V]) EndKey() (k K, ok bool, err error) {
	return decodeOptional[K]("endkey", p.endKey)
}

// Keys decodes key or keys, nil when neither is set
func (p *Parameters[K, V]) Keys() ([]K, error) {
	if len(p.key) > 0 {
		k, err := decode[K]("key", p.key)
		if err != nil {
			return nil, err
		}
		return []K{k}, nil
	}
	if p.keys == nil {
		return nil, nil
	}
	out := make([]K, 0, len(p.keys))
	for _, raw := range p.keys {
		k, err := decode[K]("keys", raw)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// wireParams is the form sent to the server, either as URL query or as one
// entry of a multiple query body.
type wireParams struct {
	Descending    *bool             `url:"descending,omitempty" json:"descending,omitempty"`
	EndKey        jsonParam         `url:"endkey,omitempty" json:"endkey,omitempty"`
	EndKeyDocID   *string           `url:"endkey_docid,omitempty" json:"endkey_docid,omitempty"`
	Group         *bool             `url:"group,omitempty" json:"group,omitempty"`
	GroupLevel    *int              `url:"group_level,omitempty" json:"group_level,omitempty" validate:"omitempty,min=0"`
	IncludeDocs   *bool             `url:"include_docs,omitempty" json:"include_docs,omitempty"`
	InclusiveEnd  *bool             `url:"inclusive_end,omitempty" json:"inclusive_end,omitempty"`
	Key           jsonParam         `url:"key,omitempty" json:"key,omitempty"`
	Keys          []json.RawMessage `url:"-" json:"keys,omitempty"`
	Limit         *int              `url:"limit,omitempty" json:"limit,omitempty" validate:"omitempty,min=0"`
	Reduce        *bool             `url:"reduce,omitempty" json:"reduce,omitempty"`
	Skip          *int64            `url:"skip,omitempty" json:"skip,omitempty" validate:"omitempty,min=0"`
	Stable        *bool             `url:"stable,omitempty" json:"stable,omitempty"`
	Stale         string            `url:"stale,omitempty" json:"stale,omitempty" validate:"omitempty,oneof=ok update_after"`
	StartKey      jsonParam         `url:"startkey,omitempty" json:"startkey,omitempty"`
	StartKeyDocID *string           `url:"startkey_docid,omitempty" json:"startkey_docid,omitempty"`
	Update        string            `url:"update,omitempty" json:"update,omitempty" validate:"omitempty,oneof=true false lazy"`
}

// jsonParam is a key typed option, JSON encoded in the query string
type jsonParam json.RawMessage

// EncodeValues implements query.Encoder
func (p jsonParam) EncodeValues(key string, v *url.Values) error {
	v.Set(key, string(p))
	return nil
}

// MarshalJSON implements json.Marshaler
func (p jsonParam) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Parameters[K, V]) wire() *wireParams {
	w := &wireParams{
		Descending:    p.descending,
		EndKey:        jsonParam(p.endKey),
		EndKeyDocID:   p.endKeyDocID,
		Group:         p.group,
		GroupLevel:    p.groupLevel,
		IncludeDocs:   p.includeDocs,
		InclusiveEnd:  p.inclusiveEnd,
		Key:           jsonParam(p.key),
		Keys:          p.keys,
		Limit:         p.limit,
		Reduce:        p.reduce,
		Skip:          p.skip,
		Stable:        p.stable,
		Stale:         p.stale,
		StartKey:      jsonParam(p.startKey),
		StartKeyDocID: p.startKeyDocID,
		Update:        p.update,
	}
	if p.rowsPerPage > 0 {
		w.Limit = types.ToPointer(p.rowsPerPage + 1)
	}
	return w
}

// Validate checks option values and option combinations the server rejects
func (p *Parameters[K, V]) Validate() error {
	if err := validate.Struct(p.wire()); err != nil {
		return ecode.InvalidArgument("%v", err)
	}
	if p.groupLevel != nil && !isComplexKey[K]() {
		return ecode.InvalidArgument("group_level is only valid with array keys")
	}
	if p.IncludeDocs() && p.reduce != nil && *p.reduce {
		return ecode.InvalidArgument("include_docs is not valid with reduce=true")
	}
	if (p.group != nil || p.groupLevel != nil) && !p.Reduce() {
		return ecode.InvalidArgument("group and group_level are not valid with reduce=false")
	}
	if len(p.keys) > 0 && p.rowsPerPage > 0 {
		return ecode.InvalidArgument("multiple keys can not be paginated")
	}
	if p.skip != nil && p.rowsPerPage > 0 {
		return ecode.InvalidArgument("skip can not be paginated")
	}
	return nil
}

// ToRequest renders the parameters against a view endpoint. Multiple keys
// go in a JSON body with POST, everything else is a GET query string.
func (p *Parameters[K, V]) ToRequest(endpoint string) (method, target string, body []byte, err error) {
	w := p.wire()
	values, err := query.Values(w)
	if err != nil {
		return "", "", nil, ecode.InvalidArgument("encode query: %v", err)
	}
	target = endpoint
	if q := values.Encode(); q != "" {
		target += "?" + q
	}
	if len(w.Keys) == 0 {
		return "GET", target, nil, nil
	}
	body, err = json.Marshal(struct {
		Keys []json.RawMessage `json:"keys"`
	}{w.Keys})
	if err != nil {
		return "", "", nil, ecode.InvalidArgument("encode keys: %v", err)
	}
	return "POST", target, body, nil
}

func marshalKey[K any](field string, k K) (json.RawMessage, error) {
	raw, err := json.Marshal(k)
	if err != nil {
		return nil, ecode.InvalidArgument("%s: %v", ecode.FieldIsInvalid(field), err)
	}
	return raw, nil
}

func decode[T any](field string, raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, ecode.Decode(field, err)
	}
	return v, nil
}

func decodeOptional[T any](field string, raw json.RawMessage) (T, bool, error) {
	if len(raw) == 0 {
		var zero T
		return zero, false, nil
	}
	v, err := decode[T](field, raw)
	return v, err == nil, err
}

// isNull reports whether raw is absent or JSON null
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// isComplexKey reports whether K can hold a JSON array
func isComplexKey[K any]() bool {
	switch reflect.TypeFor[K]().Kind() {
	case reflect.Slice, reflect.Array, reflect.Interface:
		return true
	}
	return false
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
