// Package transport defines the request pipeline: the Request and Response
// envelopes, the Service stage interface, and the Layer type that wraps one
// stage around another.
//
// A pipeline is assembled by composing layers around a terminal executor:
//
//	svc := transport.Chain(
//		transport.WithRetry(retryCfg, log),
//		transport.WithLogging(log),
//		transport.WithRequestID(),
//	)(executor)
//
// Layers apply in registration order, so the last one registered is the
// outermost: above, WithRequestID sees the request first and the response
// last.
//
// Built-in layers cover logging, tracing, metrics, request ids, static
// headers, rate limiting, circuit breaking, concurrency caps and opt-in
// retries. Admission-control layers report through Ready, which never
// consumes capacity.
package transport
