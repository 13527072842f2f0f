// Package observability wires OpenTelemetry tracing and metrics for the
// client.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-app"), log)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-app"), log)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter())
//
// The transport package records spans and instruments through these
// helpers; nothing here is required when telemetry is disabled.
package observability
