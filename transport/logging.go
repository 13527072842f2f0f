package transport

import (
	"context"
	"time"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
)

// WithLogging logs every call: method, URL, status, and duration at debug,
// failures at warn (API rejections) or error (everything else).
func WithLogging(log *logger.Logger) Layer {
	return func(inner Service) Service {
		return &loggingService{wrapped: wrapped{inner}, log: log.WithComponent("transport")}
	}
}

type loggingService struct {
	wrapped
	log *logger.Logger
}

func (l *loggingService) Call(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := l.inner.Call(ctx, req)

	fields := logger.Fields(logger.FieldDuration, time.Since(start).Milliseconds())
	if r, ok := AsHTTP(req); ok {
		fields[logger.FieldMethod] = r.Method
		fields[logger.FieldURL] = r.URL
	}
	if r, ok := AsHTTPResponse(resp); ok {
		fields[logger.FieldStatusCode] = r.StatusCode
	}

	log := l.log.WithContext(ctx)
	switch {
	case err == nil:
		log.Debug("request completed", fields)
	case pberrors.IsAPI(err):
		fields[logger.FieldError] = err.Error()
		log.Warn("request rejected", fields)
	default:
		fields[logger.FieldError] = err.Error()
		fields[logger.FieldErrorKind] = string(pberrors.KindOf(err))
		log.Error("request failed", fields)
	}
	return resp, err
}
