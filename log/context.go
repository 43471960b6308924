package log

import (
	"context"

	"github.com/ncobase/couchview/tracing"
)

var traceKey = tracing.TraceIDKey

// getTraceID gets a trace ID from the context.
func getTraceID(ctx context.Context) string {
	return tracing.GetTraceID(ctx)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	return tracing.EnsureTraceID(ctx)
}
