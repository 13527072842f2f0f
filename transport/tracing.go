package transport

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/observability"
)

// WithTracing opens a client span around each call and injects the trace
// context into the outgoing headers.
func WithTracing() Layer {
	return func(inner Service) Service {
		return &tracingService{wrapped: wrapped{inner}}
	}
}

type tracingService struct {
	wrapped
}

func (t *tracingService) Call(ctx context.Context, req Request) (Response, error) {
	var opts []trace.SpanStartOption
	r, isHTTP := AsHTTP(req)
	if isHTTP {
		opts = append(opts, trace.WithAttributes(observability.HTTPAttributes(r.Method, r.URL)...))
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest, opts...)
	defer span.End()

	sc := span.SpanContext()
	if sc.IsValid() {
		ctx = logger.ContextWithTrace(ctx, sc.TraceID().String(), sc.SpanID().String())
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		span.SetAttributes(attribute.String(observability.AttrRequestID, id))
	}

	if isHTTP {
		r = r.Clone()
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))
		req = r
	}

	resp, err := t.inner.Call(ctx, req)

	if hr, ok := AsHTTPResponse(resp); ok {
		span.SetAttributes(attribute.Int(observability.AttrStatusCode, hr.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(observability.AttrErrorKind, string(pberrors.KindOf(err))))
		if apiErr, ok := pberrors.AsAPIError(err); ok {
			span.SetAttributes(attribute.Int(observability.AttrAPICode, apiErr.Code))
		}
	}
	return resp, err
}
