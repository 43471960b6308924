package observes

import (
	"context"
	"time"

	"github.com/ncobase/couchview/config"
	"github.com/ncobase/couchview/tracing"

	"github.com/getsentry/sentry-go"
)

// NewSentry initializes the sentry client. An empty endpoint leaves
// sentry disabled; captures are then dropped.
func NewSentry(c *config.Sentry, name string) error {
	if c == nil || c.Endpoint == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              c.Endpoint,
		AttachStacktrace: true,
		SampleRate:       c.SampleRate,
		ServerName:       name,
		Release:          c.Release,
		Environment:      c.Environment,
	})
}

// CaptureError reports err to sentry tagged with the trace id of ctx
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if id := tracing.GetTraceID(ctx); id != "" {
			scope.SetTag(tracing.TraceIDKey, id)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered sentry events
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
