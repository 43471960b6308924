package paging

import (
	"fmt"
	"slices"
)

// Direction is the reading direction of a page relative to the original query
type Direction string

const (
	Forward  Direction = "F"
	Backward Direction = "B"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == Forward || d == Backward
}

// String implements fmt.Stringer
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return fmt.Sprintf("Direction(%q)", string(d))
}

// Window is one fetched page after sentinel handling.
type Window[T any] struct {
	Items    []T
	Sentinel *T // first item of the following page, nil on the last page
	HasNext  bool
}

// Split applies the over-fetch sentinel rule to items fetched with
// limit = perPage+1: more than perPage items proves a following page exists,
// and the extra last item belongs to it. perPage < 1 means unpaged.
// Backward pages are reversed into display order before the split.
func Split[T any](items []T, perPage int, dir Direction) Window[T] {
	if dir == Backward {
		items = slices.Clone(items)
		slices.Reverse(items)
	}
	if items == nil {
		items = make([]T, 0)
	}
	if perPage < 1 || len(items) <= perPage {
		return Window[T]{Items: items}
	}
	last := items[len(items)-1]
	return Window[T]{
		Items:    items[:len(items)-1],
		Sentinel: &last,
		HasNext:  true,
	}
}

// Range returns the 1-based display range of a page.
// resultRows is the number of rows fetched, sentinel included.
func Range(pageNumber int64, perPage int, resultRows int, hasNext bool, totalRows int64) (from, to int64) {
	if perPage < 1 {
		return 1, totalRows
	}
	offset := (pageNumber - 1) * int64(perPage)
	if hasNext {
		return offset + 1, offset + int64(perPage)
	}
	return offset + 1, offset + int64(resultRows)
}
