// Package tracing configures OpenTelemetry for the client and provides the
// span and attribute helpers used across the transport and resource clients.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/jmaptools/fastmail-cli"

// Init installs the global tracer provider. With an empty endpoint no
// exporter is configured and all spans are no-ops, which is the normal CLI
// mode. The returned shutdown function flushes pending spans and must be
// called before exit.
func Init(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	InitPropagator()

	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "fastmail-cli"),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// InitPropagator registers the W3C trace context and baggage propagators.
func InitPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Tracer returns the tracer all client spans are created from.
func Tracer() trace.Tracer {
	return otel.Tracer(scopeName)
}

// RequestID returns the request_id span attribute.
func RequestID(id string) attribute.KeyValue {
	return attribute.String("request_id", id)
}

// AccountID returns the account_id span attribute.
func AccountID(id string) attribute.KeyValue {
	return attribute.String("account_id", id)
}

// BlobID returns the blob_id span attribute.
func BlobID(id string) attribute.KeyValue {
	return attribute.String("blob_id", id)
}

// EmailID returns the email_id span attribute.
func EmailID(id string) attribute.KeyValue {
	return attribute.String("email_id", id)
}

// Command returns the command span attribute identifying a CLI command or
// MCP tool.
func Command(name string) attribute.KeyValue {
	return attribute.String("command", name)
}

// JMAPMethod returns the jmap.method span attribute.
func JMAPMethod(method string) attribute.KeyValue {
	return attribute.String("jmap.method", method)
}

// JMAPCallID returns the jmap.call_id span attribute.
func JMAPCallID(id string) attribute.KeyValue {
	return attribute.String("jmap.call_id", id)
}

// JMAPCallCount returns the jmap.call_count span attribute: the number of
// method calls in a batch.
func JMAPCallCount(n int) attribute.KeyValue {
	return attribute.Int("jmap.call_count", n)
}

// HTTPStatus returns the http.status_code span attribute.
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int("http.status_code", code)
}

// StartSpan starts a span with the given name and attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartRequestSpan starts the span for one JMAP round trip carrying the
// batched method names.
func StartRequestSpan(ctx context.Context, methods []string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "JMAP Request", trace.WithAttributes(
		attribute.StringSlice("jmap.methods", methods),
		JMAPCallCount(len(methods)),
	))
}

// RecordError records err on the span and marks the span's status as error.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
