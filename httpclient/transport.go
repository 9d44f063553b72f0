package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
	"github.com/coinbase-samples/core-go/resilience"
	"github.com/coinbase-samples/core-go/util"
)

// send runs the retry loop for desc and classifies the terminal outcome.
func (c *Client) send(ctx context.Context, desc *Descriptor, exec execution) (*Response, error) {
	method := string(desc.Method())
	log := c.log.WithFields(logger.Fields(
		logger.FieldRequestID, desc.ID(),
		logger.FieldMethod, method,
		logger.FieldURL, desc.BasePath()+desc.Path(),
	))

	host, path := splitURL(desc.URL())
	ctx, span := observability.StartClientSpan(ctx, method, host, path, desc.ID())
	c.metrics.RecordStart(ctx)
	start := time.Now()

	attempts := 0
	onRetry := func(attempt int, err error, backoff time.Duration) {
		log.Warn("retrying request", logger.ErrorFields(err,
			logger.FieldAttempt, attempt,
			logger.FieldBackoff, backoff.Milliseconds(),
		))
		observability.RecordRetry(ctx, attempt, backoff.Milliseconds(), err)
		c.metrics.RecordRetry(ctx, method)
	}

	if exec.scopedRequest > 0 || exec.scopedResponse > 0 {
		observability.RecordTransforms(ctx, exec.scopedRequest, exec.scopedResponse)
	}

	var resp *Response
	release, err := c.acquire(ctx)
	if err == nil {
		resp, err = resilience.Retry(ctx, exec.policy.config(onRetry), func(attemptCtx context.Context, attempt int) (*Response, error) {
			attempts = attempt + 1
			return c.attempt(attemptCtx, desc, exec.pipeline, attempt, log)
		})
		release()
	}

	var se *statusError
	switch {
	case err == nil:
	case errors.As(err, &se):
		if cerr := c.classifier(se.resp); cerr != nil {
			err = cerr
		} else {
			resp, err = se.resp, nil
		}
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		err = NewCanceledError(ctx.Err())
	}

	if err == nil {
		resp, err = exec.pipeline.ApplyResponse(resp)
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	} else if e, ok := AsError(err); ok {
		status = e.StatusCode
	}
	outcome := "ok"
	if err != nil {
		outcome = errorKind(err)
		log.Debug("request failed", logger.ErrorFields(err,
			logger.FieldKind, outcome,
			logger.FieldStatus, status,
			logger.FieldAttempt, attempts,
		))
	}
	c.metrics.RecordEnd(ctx, method, outcome, time.Since(start))
	observability.EndClientSpan(span, status, attempts, outcome, err)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// attempt performs one wire attempt. Failure statuses come back as a
// *statusError so the retry policy can inspect them.
func (c *Client) attempt(ctx context.Context, desc *Descriptor, pipeline Pipeline, attempt int, log *logger.Logger) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, NewCanceledError(ctx.Err())
			}
			// The wait would outlast the context deadline.
			return nil, &Error{Kind: KindTransport, Message: "rate limit wait", Err: err}
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, desc.Timeout())
	defer cancel()

	req, err := desc.NewRequest(attemptCtx)
	if err != nil {
		return nil, err
	}
	if c.config.PropagateTrace {
		observability.InjectTraceHeaders(ctx, req.Header)
	}
	req, err = pipeline.ApplyRequest(req)
	if err != nil {
		return nil, err
	}

	c.metrics.RecordAttempt(ctx, string(desc.Method()))
	if c.breaker == nil {
		return c.exchange(ctx, req, desc, attempt, log)
	}
	resp, err := resilience.ExecuteWithResult(c.breaker, func() (*Response, error) {
		return c.exchange(ctx, req, desc, attempt, log)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, &Error{Kind: KindTransport, Message: "circuit open", Err: err}
	}
	return resp, err
}

// exchange sends req and reads the whole response.
func (c *Client) exchange(ctx context.Context, req *http.Request, desc *Descriptor, attempt int, log *logger.Logger) (*Response, error) {
	if log.DebugEnabled() {
		log.Debug("sending request", logger.Fields(
			logger.FieldAttempt, attempt,
			"headers", util.RedactHeaders(req.Header),
		))
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wireError(ctx, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.wireError(ctx, err)
	}

	resp := newResponse(httpResp, body, desc.ID(), c.serializer)
	if log.DebugEnabled() {
		log.Debug("response received", logger.DurationFields(logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldStatus, resp.StatusCode,
		), time.Since(start)))
	}
	if resp.IsError() {
		return nil, &statusError{resp: resp}
	}
	return resp, nil
}

// acquire takes a bulkhead slot for one call. The returned release must be
// called once the call is over.
func (c *Client) acquire(ctx context.Context) (release func(), err error) {
	if c.bulkhead == nil {
		return func() {}, nil
	}
	if err := c.bulkhead.Acquire(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, NewCanceledError(ctx.Err())
		}
		return nil, &Error{Kind: KindTransport, Message: "too many requests in flight", Err: err}
	}
	return c.bulkhead.Release, nil
}

// wireError maps an I/O failure: the caller's context ending is a
// cancellation, anything else (including the per-attempt timeout) is a
// transport failure.
func (c *Client) wireError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return NewCanceledError(ctx.Err())
	}
	return NewTransportError(err)
}

func errorKind(err error) string {
	if e, ok := AsError(err); ok {
		return e.Kind.String()
	}
	return "transform"
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}
