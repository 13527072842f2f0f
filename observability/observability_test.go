package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-app")

	if cfg.ServiceName != "test-app" {
		t.Errorf("expected ServiceName 'test-app', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-app")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSampler(t *testing.T) {
	if sampler(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Errorf("expected always-on sampler, got %s", sampler(1).Description())
	}
	if sampler(0).Description() != sdktrace.NeverSample().Description() {
		t.Errorf("expected always-off sampler, got %s", sampler(0).Description())
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("test-app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := res.Set().Value(attribute.Key("service.name"))
	if !ok || v.AsString() != "test-app" {
		t.Errorf("expected service.name test-app, got %v", v)
	}
}

func TestStartSpan_ClientKind(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanHTTPRequest,
		trace.WithAttributes(HTTPAttributes("GET", "http://pb/api/health")...))
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].SpanKind != trace.SpanKindClient {
		t.Errorf("expected client span, got %v", spans[0].SpanKind)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected recorded error event, got %d events", len(spans[0].Events))
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", 200, 100*time.Millisecond)
	metrics.RecordError(ctx, "GET", "transport")
	metrics.RecordRejected(ctx, "rate_limited")
}

func TestMetrics_RecordsToReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "POST", 0, time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
		}
	}
	for _, name := range []string{"pocketbase.client.requests", "pocketbase.client.duration", "pocketbase.client.active"} {
		if !found[name] {
			t.Errorf("expected metric %s to be recorded", name)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if statusLabel(0) != "none" {
		t.Errorf("expected none, got %s", statusLabel(0))
	}
	if statusLabel(404) != "404" {
		t.Errorf("expected 404, got %s", statusLabel(404))
	}
}
