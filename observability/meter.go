package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/gopocket/logger"
)

// MeterConfig configures the OpenTelemetry meter.
type MeterConfig struct {
	// ServiceName is the name reported on the resource.
	ServiceName string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	// Insecure allows insecure connections.
	Insecure bool
	// Interval is how often metrics are exported.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName: serviceName,
		Endpoint:    "localhost:4318",
		Insecure:    true,
		Interval:    15 * time.Second,
	}
}

// InitMeter installs a global OTLP meter provider.
// The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, config MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	if log != nil {
		log.Info("meter initialized", logger.Fields(
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}
	return mp, nil
}

// Meter returns the client meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metrics holds the instruments recorded by the metrics layer.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
	rejectedTotal   metric.Int64Counter
}

// NewMetrics creates the client instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("pocketbase.client.requests",
		metric.WithDescription("Requests sent to the backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("pocketbase.client.duration",
		metric.WithDescription("Round-trip time of backend requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("pocketbase.client.active",
		metric.WithDescription("Requests currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("pocketbase.client.errors",
		metric.WithDescription("Failed requests by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating errors counter: %w", err)
	}

	rejectedTotal, err := meter.Int64Counter("pocketbase.client.rejected",
		metric.WithDescription("Requests refused by a readiness check"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		errorTotal:      errorTotal,
		rejectedTotal:   rejectedTotal,
	}, nil
}

// RecordRequestStart marks a request as in flight.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd records a finished request. status is 0 when no
// response was received.
func (m *Metrics) RecordRequestEnd(ctx context.Context, method string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", statusLabel(status)),
	)
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordError counts a failed request by error kind.
func (m *Metrics) RecordError(ctx context.Context, method, kind string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("kind", kind),
	))
}

// RecordRejected counts a request refused before dispatch.
func (m *Metrics) RecordRejected(ctx context.Context, reason string) {
	m.rejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
