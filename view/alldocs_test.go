package view

import (
	"context"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/ncobase/couchview/net/client"
)

const allDocsBody = `{"total_rows":3,"offset":0,"rows":[
{"id":"a","key":"a","value":{"rev":"1-a"},"doc":{"_id":"a","_rev":"1-a","title":"Alien"}},
{"id":"b","key":"b","value":{"rev":"2-b","deleted":true},"doc":null},
{"key":"c","error":"not_found"}
]}`

func TestAllDocs(t *testing.T) {
	var seen *client.Request
	d := client.DispatcherFunc(func(_ context.Context, r *client.Request) ([]byte, error) {
		seen = r
		return []byte(allDocsBody), nil
	})
	req := mustBuild(t, NewAllDocsRequest(newTestDB(t, d)).Keys("a", "b", "c"))

	resp, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if seen.Method != "POST" || !strings.HasSuffix(seen.URL, "/films/_all_docs") {
		t.Errorf("unexpected request %s %s", seen.Method, seen.URL)
	}

	all := AllDocs(resp)
	if ids := all.DocIDs(); !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("unexpected ids %v", ids)
	}
	revs, err := all.IDsAndRevs()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !maps.Equal(revs, map[string]string{"a": "1-a", "b": "2-b"}) {
		t.Errorf("unexpected revisions %v", revs)
	}

	docs, err := all.Docs()
	if err != nil {
		t.Fatalf("expected docs without include_docs check, got %v", err)
	}
	if len(docs) != 2 || docs[0]["title"] != "Alien" || !docs[1].Deleted() || docs[1].Rev() != "2-b" {
		t.Errorf("unexpected docs %v", docs)
	}
	if resp.Rows()[2].Error() != "not_found" {
		t.Errorf("expected row error to be exposed")
	}
}

func TestAllDocsPaginated(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	d := client.DispatcherFunc(func(_ context.Context, r *client.Request) ([]byte, error) {
		start := 0
		if i := strings.Index(r.URL, "startkey=%22"); i >= 0 {
			start = slices.Index(ids, r.URL[i+len("startkey=%22"):i+len("startkey=%22")+1])
		}
		end := min(start+3, len(ids))
		var rows []string
		for _, id := range ids[start:end] {
			rows = append(rows, `{"id":"`+id+`","key":"`+id+`","value":{"rev":"1-`+id+`"}}`)
		}
		return []byte(`{"total_rows":5,"rows":[` + strings.Join(rows, ",") + `]}`), nil
	})
	req := mustBuild(t, NewAllDocsRequest(newTestDB(t, d)).RowsPerPage(2))

	first, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var got []string
	for page, err := range first.Pages(context.Background()) {
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got = append(got, AllDocs(page).DocIDs()...)
	}
	if !slices.Equal(got, ids) {
		t.Errorf("expected %v, got %v", ids, got)
	}
}
