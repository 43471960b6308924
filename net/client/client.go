package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ncobase/couchview/consts"
	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/log"
	"github.com/ncobase/couchview/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Request is one outbound call to the database server.
type Request struct {
	Method string
	URL    string
	Body   []byte // JSON, nil for GET
}

// Dispatcher performs a request and returns the JSON body of a 2xx answer.
// Non-2xx answers are returned as *ecode.RemoteError.
type Dispatcher interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface
type DispatcherFunc func(ctx context.Context, req *Request) ([]byte, error)

// Do implements Dispatcher
func (f DispatcherFunc) Do(ctx context.Context, req *Request) ([]byte, error) {
	return f(ctx, req)
}

// Option configures an HTTPDispatcher
type Option func(*HTTPDispatcher)

// WithHTTPClient replaces the underlying http client
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDispatcher) {
		d.client = c
	}
}

// WithSlowRequest sets the duration after which a request is logged as slow
func WithSlowRequest(threshold time.Duration) Option {
	return func(d *HTTPDispatcher) {
		d.slow = threshold
	}
}

// HTTPDispatcher is the net/http implementation of Dispatcher
type HTTPDispatcher struct {
	client *http.Client
	slow   time.Duration
}

// NewHTTPDispatcher creates a dispatcher with the given request timeout
func NewHTTPDispatcher(timeout time.Duration, opts ...Option) *HTTPDispatcher {
	d := &HTTPDispatcher{
		client: &http.Client{Timeout: timeout},
		slow:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Do implements Dispatcher
func (d *HTTPDispatcher) Do(ctx context.Context, r *Request) (body []byte, err error) {
	ctx, span := tracing.StartSpan(ctx, "couchdb "+r.Method,
		attribute.String("http.method", r.Method),
		attribute.String("http.url", redact(r.URL)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	req, err := newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	if log.IsDebug() {
		log.Debugf(ctx, "request: %s %s %s", r.Method, redact(r.URL), string(bytes.TrimSpace(r.Body)))
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		log.Errorf(ctx, "request %s %s failed: %v", r.Method, redact(r.URL), err)
		return nil, fmt.Errorf("request %s %s: %w", r.Method, redact(r.URL), err)
	}
	defer resp.Body.Close()

	if elapsed := time.Since(start); d.slow > 0 && elapsed >= d.slow {
		log.Warnf(ctx, "slow request on %s %s (%s)", r.Method, redact(r.URL), elapsed)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", r.Method, redact(r.URL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := newRemoteError(r, resp.StatusCode, body)
		log.Debug(ctx, rerr.Error())
		return nil, rerr
	}

	if log.IsDebug() {
		log.Debugf(ctx, "response: %s", string(bytes.TrimSpace(body)))
	}
	return body, nil
}

func newHTTPRequest(ctx context.Context, r *Request) (*http.Request, error) {
	var reader io.Reader
	if r.Body != nil {
		reader = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", r.Method, redact(r.URL), err)
	}
	req.Header.Set(consts.AcceptKey, consts.JSONContentType)
	if r.Body != nil {
		req.Header.Set(consts.ContentTypeKey, consts.JSONContentType)
	}
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		req.Header.Set(consts.TraceKey, traceID)
	}
	// credentials in the server URL become basic auth
	if req.URL.User != nil {
		if p, ok := req.URL.User.Password(); ok {
			req.SetBasicAuth(req.URL.User.Username(), p)
		}
		req.URL.User = nil
	}
	return req, nil
}

// newRemoteError decodes the CouchDB error body {"error": ..., "reason": ...}
func newRemoteError(r *Request, status int, body []byte) *ecode.RemoteError {
	re := &ecode.RemoteError{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, re); err != nil {
			// proxies answer with html or plain text
			re.Code, re.Reason = "", snippet(body)
		}
	}
	re.Status = status
	re.Method = r.Method
	re.URL = redact(r.URL)
	return re
}

const maxReasonLen = 200

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxReasonLen {
		s = s[:maxReasonLen] + "..."
	}
	return s
}

// redact strips user info from a URL before it is logged or traced
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
