// Package paging holds the view-independent parts of keyset pagination:
// reading direction, the over-fetch sentinel split, display ranges and the
// opaque continuation token codec.
//
// A page is requested with limit = rowsPerPage+1. Seeing more than
// rowsPerPage rows proves that a following page exists without a second
// round trip; the extra row is the first row of that page and its key is the
// start key of the next request:
//
//	w := paging.Split(rows, 10, paging.Forward)
//	if w.HasNext {
//	    next := w.Sentinel // startkey of page 2
//	}
//
// Backward pages are read with the index scan reversed, so Split restores
// display order before trimming.
//
// Tokens are base64url encoded JSON and only carry the parameters that
// differ from the page 1 query. They must be redeemed together with that
// query:
//
//	s, _ := paging.EncodeToken(&paging.Token{PageNumber: 2, Direction: paging.Forward, StartKey: raw})
//	t, err := paging.DecodeToken(s)
package paging
