package transport

import (
	"context"
	"time"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/observability"
)

// WithMetrics records request count, duration, in-flight gauge, errors by
// kind, and readiness rejections.
func WithMetrics(metrics *Metrics) Layer {
	return func(inner Service) Service {
		return &metricsService{wrapped: wrapped{inner}, metrics: metrics}
	}
}

// Metrics is the instrument set used by WithMetrics.
type Metrics = observability.Metrics

type metricsService struct {
	wrapped
	metrics *observability.Metrics
}

func (m *metricsService) Ready(ctx context.Context) error {
	err := m.inner.Ready(ctx)
	if err != nil {
		m.metrics.RecordRejected(ctx, rejectionReason(err))
	}
	return err
}

func (m *metricsService) Call(ctx context.Context, req Request) (Response, error) {
	method := ""
	if r, ok := AsHTTP(req); ok {
		method = r.Method
	}

	m.metrics.RecordRequestStart(ctx)
	start := time.Now()
	resp, err := m.inner.Call(ctx, req)

	status := 0
	if r, ok := AsHTTPResponse(resp); ok {
		status = r.StatusCode
	} else if apiErr, ok := pberrors.AsAPIError(err); ok {
		status = apiErr.Status
	}
	m.metrics.RecordRequestEnd(ctx, method, status, time.Since(start))

	if err != nil {
		m.metrics.RecordError(ctx, method, string(pberrors.KindOf(err)))
	}
	return resp, err
}
