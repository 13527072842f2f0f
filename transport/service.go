package transport

import "context"

// Service is one stage of the request pipeline. The terminal stage is the
// HTTP executor; every other stage is a layer wrapping the next one.
type Service interface {
	// Name identifies the stage in logs and errors.
	Name() string
	// Ready reports whether a request would be admitted now. It must not
	// consume capacity.
	Ready(ctx context.Context) error
	// Call processes one request.
	Call(ctx context.Context, req Request) (Response, error)
}

// Layer wraps a Service to add cross-cutting behavior.
type Layer func(Service) Service

// Chain composes layers in registration order: each layer wraps the result
// of the previous one, so the last layer is the outermost and sees the
// request first and the response last.
//
// Chain(a, b, c)(svc) is equivalent to c(b(a(svc))).
func Chain(layers ...Layer) Layer {
	return func(inner Service) Service {
		for _, layer := range layers {
			if layer != nil {
				inner = layer(inner)
			}
		}
		return inner
	}
}

// ServiceFunc adapts a function to a Service that is always ready.
type ServiceFunc func(ctx context.Context, req Request) (Response, error)

func (f ServiceFunc) Name() string                { return "func" }
func (f ServiceFunc) Ready(context.Context) error { return nil }
func (f ServiceFunc) Call(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// wrapped is embedded by layers that only intercept Call.
type wrapped struct {
	inner Service
}

func (w wrapped) Name() string                    { return w.inner.Name() }
func (w wrapped) Ready(ctx context.Context) error { return w.inner.Ready(ctx) }
