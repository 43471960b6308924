// Package view queries CouchDB and Cloudant map/reduce views and the
// _all_docs index, and reads large results page by page.
//
// A request is described with a builder and frozen by Build:
//
//	db, _ := view.NewDatabase(client.NewHTTPDispatcher(30*time.Second), "http://127.0.0.1:5984", "films")
//	req, err := view.NewPaginatedRequest[int, string](db, "films", "by_year").
//	    RowsPerPage(10).
//	    Descending(true).
//	    Build()
//	resp, err := req.Response(ctx)
//
// Pagination is keyset based. Every page is fetched with one row more than
// the page size; that row starts the following page, so no skip is ever
// sent and pages stay stable while the index grows. A page is left either
// with the response itself:
//
//	next, err := resp.NextPage(ctx)
//
// or, across processes, with an opaque token that is redeemed against an
// equivalent request:
//
//	token, _ := resp.NextPageToken()
//	page2, err := req.ResponseWithToken(ctx, token)
//
// Backward pages are read by reversing the index scan from the first row of
// the current page; rows are returned in the order of the original query.
//
// Several queries on one view are batched with NewMultipleRequest. Servers
// without the .../queries endpoint answer 500 badmatch, the batch is then
// posted to the view itself.
package view
