package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/resilience"
)

// Rejection reasons reported by Ready failures.
const (
	ReasonRateLimited = "rate_limited"
	ReasonCircuitOpen = "circuit_open"
	ReasonAtCapacity  = "at_capacity"
	ReasonNotReady    = "not_ready"
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, resilience.ErrRateLimited):
		return ReasonRateLimited
	case errors.Is(err, resilience.ErrCircuitOpen):
		return ReasonCircuitOpen
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return ReasonAtCapacity
	default:
		return ReasonNotReady
	}
}

// --- Rate limit ---

// WithRateLimit admits calls through a token bucket. Ready fails fast with
// resilience.ErrRateLimited when no token is available; Call waits for one.
func WithRateLimit(rl *resilience.RateLimiter) Layer {
	return func(inner Service) Service {
		return &rateLimitService{wrapped: wrapped{inner}, rl: rl}
	}
}

type rateLimitService struct {
	wrapped
	rl *resilience.RateLimiter
}

func (s *rateLimitService) Ready(ctx context.Context) error {
	if err := s.rl.Ready(); err != nil {
		return err
	}
	return s.inner.Ready(ctx)
}

func (s *rateLimitService) Call(ctx context.Context, req Request) (Response, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, pberrors.Transport("ratelimit.wait", err)
	}
	return s.inner.Call(ctx, req)
}

// --- Circuit breaker ---

// WithCircuitBreaker stops dispatching after repeated transport failures or
// 429/5xx rejections. Ready fails with resilience.ErrCircuitOpen while open.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Layer {
	return func(inner Service) Service {
		return &breakerService{wrapped: wrapped{inner}, cb: cb}
	}
}

type breakerService struct {
	wrapped
	cb *resilience.CircuitBreaker
}

func (s *breakerService) Ready(ctx context.Context) error {
	if err := s.cb.Ready(); err != nil {
		return err
	}
	return s.inner.Ready(ctx)
}

func (s *breakerService) Call(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := s.cb.Execute(func() error {
		var callErr error
		resp, callErr = s.inner.Call(ctx, req)
		if callErr != nil {
			return callErr
		}
		return failedStatus(resp)
	})

	var se *statusError
	switch {
	case errors.As(err, &se):
		return resp, nil
	case errors.Is(err, resilience.ErrCircuitOpen):
		return nil, pberrors.Transport("breaker", err)
	}
	return resp, err
}

// --- Concurrency limit ---

// WithConcurrencyLimit caps the number of calls in flight.
func WithConcurrencyLimit(bh *resilience.Bulkhead) Layer {
	return func(inner Service) Service {
		return &bulkheadService{wrapped: wrapped{inner}, bh: bh}
	}
}

type bulkheadService struct {
	wrapped
	bh *resilience.Bulkhead
}

func (s *bulkheadService) Ready(ctx context.Context) error {
	if err := s.bh.Ready(); err != nil {
		return err
	}
	return s.inner.Ready(ctx)
}

func (s *bulkheadService) Call(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := s.bh.Execute(ctx, func() error {
		var callErr error
		resp, callErr = s.inner.Call(ctx, req)
		return callErr
	})
	if errors.Is(err, resilience.ErrBulkheadFull) || errors.Is(err, resilience.ErrBulkheadTimeout) {
		return nil, pberrors.Transport("bulkhead", err)
	}
	return resp, err
}

// --- Retry ---

// WithRetry re-sends failed calls per cfg. It is opt-in: the default
// pipeline performs exactly one attempt. Only transport failures and
// 429/5xx rejections are retried, and requests whose body cannot be
// replayed (RawBody, streamed files) are sent once.
func WithRetry(cfg resilience.RetryConfig, log *logger.Logger) Layer {
	if log == nil {
		log = logger.Nop()
	}
	return func(inner Service) Service {
		return &retryService{wrapped: wrapped{inner}, cfg: cfg, log: log.WithComponent("retry")}
	}
}

type retryService struct {
	wrapped
	cfg resilience.RetryConfig
	log *logger.Logger
}

func (s *retryService) Call(ctx context.Context, req Request) (Response, error) {
	if !s.cfg.Enabled() || !replayable(req) {
		return s.inner.Call(ctx, req)
	}

	cfg := s.cfg
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		s.log.WithContext(ctx).Warn("retrying request", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldError, err.Error(),
			"backoff", backoff.String(),
		))
		if onRetry != nil {
			onRetry(attempt, err, backoff)
		}
	}

	resp, err := resilience.Retry(ctx, cfg, func(attempt int) (Response, error) {
		resp, err := s.inner.Call(ctx, req)
		if err == nil && attempt < cfg.MaxAttempts {
			err = failedStatus(resp)
		}
		if err != nil {
			drain(resp)
			return nil, err
		}
		return resp, nil
	})

	var se *statusError
	if errors.As(err, &se) {
		return nil, se.APIError
	}
	return resp, err
}

// statusError marks a 429 or 5xx response so the breaker and retry layers
// can count it. The response itself still flows to the caller, which
// classifies it.
type statusError struct {
	*pberrors.APIError
}

func (e *statusError) Unwrap() error { return e.APIError }

func failedStatus(resp Response) error {
	r, ok := AsHTTPResponse(resp)
	if !ok {
		return nil
	}
	if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= http.StatusInternalServerError {
		return &statusError{pberrors.ParseAPIError(r.StatusCode, nil)}
	}
	return nil
}

func replayable(req Request) bool {
	r, ok := AsHTTP(req)
	if !ok {
		return false
	}
	switch b := r.Body.(type) {
	case nil, JSONBody:
		return true
	case *MultipartBody:
		for _, f := range b.Files {
			if f.Reader != nil {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func drain(resp Response) {
	if r, ok := AsHTTPResponse(resp); ok && r.Body != nil {
		_ = r.Body.Close()
	}
}
