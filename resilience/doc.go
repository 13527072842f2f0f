// Package resilience provides the admission-control and recovery primitives
// behind gopocket's optional transport layers.
//
//   - CircuitBreaker fails fast after repeated transport or 5xx failures.
//   - RateLimiter is a token bucket over golang.org/x/time/rate.
//   - Bulkhead caps in-flight requests with golang.org/x/sync/semaphore.
//   - Retry repeats an operation with exponential backoff.
//
// None of these run unless the matching layer is added to the client:
//
//	c, err := client.NewBuilder().
//	    SetBaseURL("http://127.0.0.1:8090").
//	    AddLayer(transport.WithRateLimit(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 20, Burst: 5}))).
//	    AddLayer(transport.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("pocketbase")))).
//	    Build()
package resilience
