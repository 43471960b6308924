package view

import (
	"context"
	"net/url"
	"strings"

	"github.com/ncobase/couchview/consts"
	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/net/client"
)

// Database is the client context shared by all requests against one
// database: where it lives and how requests reach it.
type Database struct {
	dispatcher client.Dispatcher
	url        *url.URL
}

// NewDatabase returns a database handle for name on the server at serverURL
func NewDatabase(d client.Dispatcher, serverURL, name string) (*Database, error) {
	if d == nil {
		return nil, ecode.InvalidArgument("%s", ecode.FieldIsRequired("dispatcher"))
	}
	if name == "" {
		return nil, ecode.InvalidArgument("%s", ecode.FieldIsBlank("database"))
	}
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ecode.InvalidArgument("%s: %q", ecode.FieldIsInvalid("server url"), serverURL)
	}
	u.RawQuery, u.Fragment = "", ""
	return &Database{
		dispatcher: d,
		url:        u.JoinPath(url.PathEscape(name)),
	}, nil
}

// URL returns the database URL
func (db *Database) URL() string {
	return db.url.String()
}

// endpoint is a row source of a database
type endpoint struct {
	design string
	view   string
}

var allDocs = endpoint{}

func newEndpoint(design, view string) (endpoint, error) {
	design = strings.TrimPrefix(design, consts.DesignPrefix)
	if design == "" {
		return endpoint{}, ecode.InvalidArgument("%s", ecode.FieldIsBlank("design document"))
	}
	if view == "" {
		return endpoint{}, ecode.InvalidArgument("%s", ecode.FieldIsBlank("view"))
	}
	return endpoint{design: design, view: view}, nil
}

func (e endpoint) isAllDocs() bool {
	return e == allDocs
}

// String names the endpoint, "design/view" or "_all_docs"
func (e endpoint) String() string {
	if e.isAllDocs() {
		return consts.AllDocsPath
	}
	return e.design + "/" + e.view
}

func (db *Database) endpointURL(e endpoint, extra ...string) string {
	if e.isAllDocs() {
		return db.url.JoinPath(append([]string{consts.AllDocsPath}, extra...)...).String()
	}
	elem := []string{consts.DesignPath, url.PathEscape(e.design), consts.ViewPath, url.PathEscape(e.view)}
	return db.url.JoinPath(append(elem, extra...)...).String()
}

func (db *Database) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	return db.dispatcher.Do(ctx, &client.Request{Method: method, URL: target, Body: body})
}
