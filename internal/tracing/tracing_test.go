package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRequestID(t *testing.T) {
	// Test that RequestID returns the expected attribute
	attr := RequestID("test-request-123")

	if attr.Key != "request_id" {
		t.Errorf("expected key 'request_id', got %q", attr.Key)
	}
	if attr.Value.AsString() != "test-request-123" {
		t.Errorf("expected value 'test-request-123', got %q", attr.Value.AsString())
	}
}

func TestAccountID(t *testing.T) {
	attr := AccountID("u456")

	if attr.Key != "account_id" {
		t.Errorf("expected key 'account_id', got %q", attr.Key)
	}
	if attr.Value.AsString() != "u456" {
		t.Errorf("expected value 'u456', got %q", attr.Value.AsString())
	}
}

func TestBlobID(t *testing.T) {
	attr := BlobID("blob-789")

	if attr.Key != "blob_id" {
		t.Errorf("expected key 'blob_id', got %q", attr.Key)
	}
	if attr.Value.AsString() != "blob-789" {
		t.Errorf("expected value 'blob-789', got %q", attr.Value.AsString())
	}
}

func TestEmailID(t *testing.T) {
	attr := EmailID("M123")

	if attr.Key != "email_id" {
		t.Errorf("expected key 'email_id', got %q", attr.Key)
	}
	if attr.Value.AsString() != "M123" {
		t.Errorf("expected value 'M123', got %q", attr.Value.AsString())
	}
}

func TestJMAPMethod(t *testing.T) {
	attr := JMAPMethod("Email/get")

	if attr.Key != "jmap.method" {
		t.Errorf("expected key 'jmap.method', got %q", attr.Key)
	}
	if attr.Value.AsString() != "Email/get" {
		t.Errorf("expected value 'Email/get', got %q", attr.Value.AsString())
	}
}

func TestJMAPCallID(t *testing.T) {
	attr := JMAPCallID("c0")

	if attr.Key != "jmap.call_id" {
		t.Errorf("expected key 'jmap.call_id', got %q", attr.Key)
	}
	if attr.Value.AsString() != "c0" {
		t.Errorf("expected value 'c0', got %q", attr.Value.AsString())
	}
}

func TestJMAPCallCount(t *testing.T) {
	attr := JMAPCallCount(2)

	if attr.Key != "jmap.call_count" {
		t.Errorf("expected key 'jmap.call_count', got %q", attr.Key)
	}
	if attr.Value.AsInt64() != 2 {
		t.Errorf("expected value 2, got %d", attr.Value.AsInt64())
	}
}

func TestStartSpan(t *testing.T) {
	// Set up an in-memory exporter for testing
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx := context.Background()

	// Call StartSpan with attributes
	_, span := StartSpan(ctx, "ListMailboxes",
		RequestID("req-123"),
		AccountID("u456"),
	)
	span.End()

	// Force flush
	tp.ForceFlush(context.Background())

	// Verify span was created with correct name and attributes
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name != "ListMailboxes" {
		t.Errorf("expected span name 'ListMailboxes', got %q", s.Name)
	}

	// Check attributes
	attrMap := make(map[string]string)
	for _, attr := range s.Attributes {
		attrMap[string(attr.Key)] = attr.Value.AsString()
	}

	if attrMap["request_id"] != "req-123" {
		t.Errorf("expected request_id 'req-123', got %q", attrMap["request_id"])
	}
	if attrMap["account_id"] != "u456" {
		t.Errorf("expected account_id 'u456', got %q", attrMap["account_id"])
	}
}

func TestStartRequestSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx := context.Background()

	_, span := StartRequestSpan(ctx, []string{"Email/query", "Email/get"})
	span.End()

	tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name != "JMAP Request" {
		t.Errorf("expected span name 'JMAP Request', got %q", s.Name)
	}

	attrMap := make(map[attribute.Key]attribute.Value)
	for _, attr := range s.Attributes {
		attrMap[attr.Key] = attr.Value
	}

	if attrMap["jmap.call_count"].AsInt64() != 2 {
		t.Errorf("expected jmap.call_count 2, got %d", attrMap["jmap.call_count"].AsInt64())
	}
	methods := attrMap["jmap.methods"].AsStringSlice()
	if len(methods) != 2 || methods[0] != "Email/query" || methods[1] != "Email/get" {
		t.Errorf("unexpected jmap.methods %v", methods)
	}
}

func TestRecordError(t *testing.T) {
	// Set up an in-memory exporter for testing
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx := context.Background()
	tracer := otel.Tracer("test")
	_, span := tracer.Start(ctx, "TestSpan")

	// Record an error
	testErr := &testError{message: "something went wrong"}
	RecordError(span, testErr)
	span.End()

	// Force flush
	tp.ForceFlush(context.Background())

	// Verify the span has error status
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Check that an error event was recorded
	if len(s.Events) == 0 {
		t.Error("expected at least one event (error), got none")
	}

	// Verify error status code
	if s.Status.Code != codes.Error {
		t.Errorf("expected error status code %d, got %d", codes.Error, s.Status.Code)
	}
}

type testError struct {
	message string
}

func (e *testError) Error() string {
	return e.message
}

func TestInitSetsPropagator(t *testing.T) {
	// Reset propagator to default before test
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())

	InitPropagator()

	// Get the registered propagator
	propagator := otel.GetTextMapPropagator()

	// Create a test carrier to verify the propagator injects trace headers
	carrier := propagation.MapCarrier{}

	// Create a context with a valid span
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	// Inject the trace context into the carrier
	propagator.Inject(ctx, carrier)

	// Verify traceparent header is set (W3C TraceContext propagator)
	traceparent := carrier.Get("traceparent")
	if traceparent == "" {
		t.Error("expected traceparent header to be set after Init, got empty string")
	}
}

func TestInit_NoEndpoint_ReturnsNoopShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected shutdown function, got nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
