package view

import (
	"github.com/ncobase/couchview/ecode"
)

// DefaultRowsPerPage is the page size of a paginated request unless set
const DefaultRowsPerPage = 20

// Builder collects the options of a view request. The first invalid
// option is kept and returned by Build. Builders are not safe for
// concurrent use.
type Builder[K, V any] struct {
	db        *Database
	endpoint  endpoint
	params    *Parameters[K, V]
	paginated bool
	err       error
}

// NewRequest starts an unpaginated request on design/view. The design
// document may be given with or without its _design/ prefix.
func NewRequest[K, V any](db *Database, design, view string) *Builder[K, V] {
	b := &Builder[K, V]{db: db, params: NewParameters[K, V]()}
	b.endpoint, b.err = newEndpoint(design, view)
	return b
}

// NewPaginatedRequest starts a request that is read page by page,
// DefaultRowsPerPage rows at a time unless RowsPerPage says otherwise.
func NewPaginatedRequest[K, V any](db *Database, design, view string) *Builder[K, V] {
	b := NewRequest[K, V](db, design, view)
	b.paginated = true
	b.set(b.params.SetRowsPerPage(DefaultRowsPerPage))
	return b
}

func (b *Builder[K, V]) set(err error) *Builder[K, V] {
	if b.err == nil && err != nil {
		b.err = err
	}
	return b
}

func (b *Builder[K, V]) unpaginatedOnly(option string) error {
	if b.paginated {
		return ecode.InvalidArgument("%s can not be set on a paginated request", option)
	}
	return nil
}

func (b *Builder[K, V]) Descending(v bool) *Builder[K, V] {
	b.params.SetDescending(v)
	return b
}

func (b *Builder[K, V]) EndKey(k K) *Builder[K, V] {
	return b.set(b.params.SetEndKey(k))
}

func (b *Builder[K, V]) EndKeyDocID(id string) *Builder[K, V] {
	b.params.SetEndKeyDocID(id)
	return b
}

func (b *Builder[K, V]) Group(v bool) *Builder[K, V] {
	b.params.SetGroup(v)
	return b
}

func (b *Builder[K, V]) GroupLevel(v int) *Builder[K, V] {
	return b.set(b.params.SetGroupLevel(v))
}

func (b *Builder[K, V]) IncludeDocs(v bool) *Builder[K, V] {
	b.params.SetIncludeDocs(v)
	return b
}

func (b *Builder[K, V]) InclusiveEnd(v bool) *Builder[K, V] {
	b.params.SetInclusiveEnd(v)
	return b
}

// Keys restricts the result to the given keys, in that order
func (b *Builder[K, V]) Keys(keys ...K) *Builder[K, V] {
	return b.set(b.params.SetKeys(keys...))
}

func (b *Builder[K, V]) Limit(v int) *Builder[K, V] {
	if err := b.unpaginatedOnly("limit"); err != nil {
		return b.set(err)
	}
	return b.set(b.params.SetLimit(v))
}

func (b *Builder[K, V]) Reduce(v bool) *Builder[K, V] {
	b.params.SetReduce(v)
	return b
}

func (b *Builder[K, V]) Skip(v int64) *Builder[K, V] {
	if err := b.unpaginatedOnly("skip"); err != nil {
		return b.set(err)
	}
	return b.set(b.params.SetSkip(v))
}

func (b *Builder[K, V]) Stable(v bool) *Builder[K, V] {
	b.params.SetStable(v)
	return b
}

// Stale is one of ok or update_after
func (b *Builder[K, V]) Stale(v string) *Builder[K, V] {
	b.params.SetStale(v)
	return b
}

func (b *Builder[K, V]) StartKey(k K) *Builder[K, V] {
	return b.set(b.params.SetStartKey(k))
}

func (b *Builder[K, V]) StartKeyDocID(id string) *Builder[K, V] {
	b.params.SetStartKeyDocID(id)
	return b
}

// Update is one of true, false or lazy
func (b *Builder[K, V]) Update(v string) *Builder[K, V] {
	b.params.SetUpdate(v)
	return b
}

// RowsPerPage sets the page size and makes the request paginated
func (b *Builder[K, V]) RowsPerPage(n int) *Builder[K, V] {
	b.paginated = true
	return b.set(b.params.SetRowsPerPage(n))
}

// Build validates the options and freezes them into a request
func (b *Builder[K, V]) Build() (*Request[K, V], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.db == nil {
		return nil, ecode.InvalidArgument("%s", ecode.FieldIsRequired("database"))
	}
	if err := b.params.Validate(); err != nil {
		return nil, err
	}
	return &Request[K, V]{
		db:       b.db,
		endpoint: b.endpoint,
		params:   b.params.Copy(),
	}, nil
}
