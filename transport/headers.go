package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/version"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// WithRequestID stamps each request with an X-Request-Id header. An id
// already on the context (logger.ContextWithRequestID) is reused; otherwise a
// random UUID is generated and stored on the context for inner layers.
func WithRequestID() Layer {
	return func(inner Service) Service {
		return &requestIDService{wrapped: wrapped{inner}}
	}
}

type requestIDService struct {
	wrapped
}

func (s *requestIDService) Call(ctx context.Context, req Request) (Response, error) {
	id := logger.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, id)
	}
	if r, ok := AsHTTP(req); ok && r.Header.Get(HeaderRequestID) == "" {
		req = r.Clone().SetHeader(HeaderRequestID, id)
	}
	return s.inner.Call(ctx, req)
}

// WithUserAgent sets the User-Agent header when the request has none.
// An empty agent uses version.UserAgent().
func WithUserAgent(agent string) Layer {
	if agent == "" {
		agent = version.UserAgent()
	}
	return WithHeader("User-Agent", agent)
}

// WithHeader sets a static header when the request has none.
func WithHeader(key, value string) Layer {
	return func(inner Service) Service {
		return &headerService{wrapped: wrapped{inner}, key: key, value: value}
	}
}

type headerService struct {
	wrapped
	key, value string
}

func (s *headerService) Call(ctx context.Context, req Request) (Response, error) {
	if r, ok := AsHTTP(req); ok && r.Header.Get(s.key) == "" {
		req = r.Clone().SetHeader(s.key, s.value)
	}
	return s.inner.Call(ctx, req)
}
