package observes

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/couchview/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Shutdown flushes and stops a provider
type Shutdown func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// NewTracer installs the global tracer provider exporting spans over OTLP
// gRPC. Without an endpoint nothing is installed and spans stay no-op.
func NewTracer(ctx context.Context, c *config.Tracer) (Shutdown, error) {
	if c == nil {
		return nil, errors.New("tracer config is nil")
	}
	if c.Endpoint == "" {
		return noopShutdown, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.Endpoint)}
	if c.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(tracerAttributes(c)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SamplingRate))),
		sdktrace.WithBatcher(exp,
			sdktrace.WithMaxExportBatchSize(c.MaxExportBatchSize),
			sdktrace.WithBatchTimeout(c.BatchTimeout),
			sdktrace.WithExportTimeout(c.ExportTimeout),
		),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

func tracerAttributes(c *config.Tracer) []attribute.KeyValue {
	attrs := []attribute.KeyValue{semconv.ServiceNameKey.String(c.ServiceName)}
	if c.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(c.ServiceVersion))
	}
	if c.Environment != "" {
		attrs = append(attrs, attribute.String("environment", c.Environment))
	}
	return attrs
}
