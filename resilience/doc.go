// Package resilience provides the fault-tolerance primitives used by the
// HTTP client: a retry loop, a circuit breaker and a bulkhead.
//
// Retry runs an operation until it succeeds, the error is not retryable,
// the attempt ceiling is reached, or the context is done. The wait between
// attempts is computed by a pluggable Backoff function and is abandoned as
// soon as the context is cancelled.
//
//	resp, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    MaxAttempts: 4,
//	    Backoff:     func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
//	    RetryIf:     isTransient,
//	}, func(ctx context.Context, attempt int) (*Response, error) {
//	    return send(ctx)
//	})
//
// CircuitBreaker fails fast after repeated failures and half-opens after a
// timeout. Bulkhead caps concurrent calls.
package resilience
