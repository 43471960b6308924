package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ncobase/couchview/cache"
	"github.com/ncobase/couchview/log"
)

// Entry is a cached response body
type Entry struct {
	Body json.RawMessage `json:"body"`
}

// CachedDispatcher serves repeated view reads from a cache.
// Only successful bodies are stored; errors always reach the caller.
type CachedDispatcher struct {
	next  Dispatcher
	store cache.ICache[Entry]
	ttl   time.Duration
}

// NewCachedDispatcher wraps next with store. A zero ttl keeps entries until evicted.
func NewCachedDispatcher(next Dispatcher, store cache.ICache[Entry], ttl time.Duration) *CachedDispatcher {
	return &CachedDispatcher{next: next, store: store, ttl: ttl}
}

// Do implements Dispatcher
func (c *CachedDispatcher) Do(ctx context.Context, req *Request) ([]byte, error) {
	key := CacheKey(req)

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warnf(ctx, "cache get %s: %v", key, err)
	} else if entry != nil {
		log.Debugf(ctx, "cache hit %s %s", req.Method, redact(req.URL))
		return entry.Body, nil
	}

	body, err := c.next.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return body, nil
	}
	if err := c.store.Set(ctx, key, &Entry{Body: body}, c.ttl); err != nil {
		log.Warnf(ctx, "cache set %s: %v", key, err)
	}
	return body, nil
}

// CacheKey derives the cache field of a request from its method, URL and body
func CacheKey(req *Request) string {
	h := sha256.New()
	h.Write([]byte(req.Method))
	h.Write([]byte{0})
	h.Write([]byte(req.URL))
	h.Write([]byte{0})
	h.Write(req.Body)
	return hex.EncodeToString(h.Sum(nil))
}
