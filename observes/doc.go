// Package observes wires the process wide observability backends:
// the OpenTelemetry tracer provider and the sentry client.
package observes
