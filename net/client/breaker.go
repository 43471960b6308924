package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ncobase/couchview/ecode"
	"github.com/ncobase/couchview/log"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects requests
var ErrCircuitOpen = errors.New("circuit breaker open")

// BreakerSettings tunes a BreakerDispatcher
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // requests allowed through while half-open
	Interval     time.Duration // window after which closed-state counts reset
	Timeout      time.Duration // time spent open before probing again
	MinRequests  uint32        // requests needed in a window before tripping
	FailureRatio float64       // failure ratio that trips the breaker
}

// BreakerDispatcher stops calling a failing server for a while.
// Only transport errors and 5xx answers count as failures; 4xx answers are the
// caller's problem and pass through without affecting the breaker.
type BreakerDispatcher struct {
	next Dispatcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerDispatcher wraps next with a circuit breaker
func NewBreakerDispatcher(next Dispatcher, s BreakerSettings) *BreakerDispatcher {
	if s.Name == "" {
		s.Name = "couchdb"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf(context.Background(), "circuit breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var re *ecode.RemoteError
			return errors.As(err, &re) && re.Status < http.StatusInternalServerError
		},
	})
	return &BreakerDispatcher{next: next, cb: cb}
}

// State returns the current breaker state
func (b *BreakerDispatcher) State() gobreaker.State {
	return b.cb.State()
}

// Do implements Dispatcher
func (b *BreakerDispatcher) Do(ctx context.Context, req *Request) ([]byte, error) {
	body, err := b.cb.Execute(func() (any, error) {
		return b.next.Do(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrCircuitOpen, req.Method, redact(req.URL), err)
	}
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}
