package httpclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
	"github.com/coinbase-samples/core-go/resilience"
)

// Client executes signed REST calls. It is safe for concurrent use.
type Client struct {
	config      Config
	httpClient  *http.Client
	credentials Credentials
	serializer  Serializer
	classifier  Classifier
	limiter     *rate.Limiter
	breaker     *resilience.CircuitBreaker
	bulkhead    *resilience.Bulkhead
	log         *logger.Logger
	metrics     *observability.ClientMetrics

	initRequest  []TransformRequestFunc
	initResponse []TransformResponseFunc

	mu    sync.Mutex
	state atomic.Pointer[snapshot]
}

// snapshot is the client-wide mutable configuration. It is replaced, never
// modified, so calls keep the snapshot they started with.
type snapshot struct {
	headers  http.Header
	pipeline Pipeline
}

// New creates a client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		serializer: JSONSerializer{},
		classifier: Classify,
		log:        logger.Get(defaultComponentName),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, NewClientError("build tls config", err)
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
		c.httpClient = &http.Client{Transport: transport}
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	if cfg.CircuitBreaker != nil {
		c.breaker = resilience.NewCircuitBreaker(c.breakerConfig(*cfg.CircuitBreaker))
	}
	if cfg.Bulkhead != nil {
		c.bulkhead = resilience.NewBulkhead(*cfg.Bulkhead)
	}

	headers := make(http.Header, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	c.state.Store(&snapshot{
		headers:  headers,
		pipeline: NewPipeline(c.initRequest, c.initResponse),
	})
	c.initRequest, c.initResponse = nil, nil

	return c, nil
}

func (c *Client) breakerConfig(cfg resilience.CircuitBreakerConfig) resilience.CircuitBreakerConfig {
	if cfg.IsFailure == nil {
		cfg.IsFailure = breakerFailure
	}
	next := cfg.OnStateChange
	cfg.OnStateChange = func(name string, from, to resilience.State) {
		c.log.Warn("circuit breaker state changed", logger.Fields(
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		))
		if next != nil {
			next(name, from, to)
		}
	}
	return cfg
}

// breakerFailure counts transport failures and server errors against the
// circuit. Client errors and cancellation do not trip it.
func breakerFailure(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.resp.StatusCode >= 500
	}
	return IsTransport(err)
}

// Config returns the resolved client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Headers returns a copy of the client-wide headers.
func (c *Client) Headers() http.Header {
	return c.state.Load().headers.Clone()
}

// AddHeader sets a client-wide header, replacing any previous value. It
// overrides signed headers of the same name. Calls already in flight are
// not affected.
func (c *Client) AddHeader(key, value string) {
	c.update(func(s *snapshot) {
		s.headers = s.headers.Clone()
		s.headers.Set(key, value)
	})
}

// AddTransformRequest appends a client-wide request transformer.
func (c *Client) AddTransformRequest(fn TransformRequestFunc) {
	c.update(func(s *snapshot) {
		s.pipeline = s.pipeline.Extend([]TransformRequestFunc{fn}, nil)
	})
}

// AddTransformResponse appends a client-wide response transformer.
func (c *Client) AddTransformResponse(fn TransformResponseFunc) {
	c.update(func(s *snapshot) {
		s.pipeline = s.pipeline.Extend(nil, []TransformResponseFunc{fn})
	})
}

func (c *Client) update(fn func(s *snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := *c.state.Load()
	fn(&next)
	c.state.Store(&next)
}

// Bounds returns the pagination ceilings for a call.
func (c *Client) Bounds(call *CallOptions) PaginationBounds {
	return PaginationBounds{
		DefaultLimit: c.config.DefaultLimit,
		MaxPages:     c.config.MaxPages,
		MaxItems:     c.config.MaxItems,
	}.overlay(call)
}

// Unwrap returns the underlying *http.Client.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// Close releases idle connections.
func (c *Client) Close(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// execution is the call-scoped view of the client: the snapshot overlaid
// with the call's options.
type execution struct {
	headers  http.Header
	pipeline Pipeline
	policy   RetryPolicy
	// scoped counts the call-specific transformers appended to the
	// client pipeline.
	scopedRequest, scopedResponse int
}

func (c *Client) resolve(call *CallOptions) execution {
	s := c.state.Load()
	exec := execution{
		headers:  s.headers,
		pipeline: s.pipeline,
	}
	retry := c.config.Retry
	if call != nil {
		retry = retry.overlay(call.Retry)
		if len(call.TransformRequest) > 0 || len(call.TransformResponse) > 0 {
			exec.pipeline = s.pipeline.Extend(call.TransformRequest, call.TransformResponse)
			baseReq, baseResp := s.pipeline.Len()
			req, resp := exec.pipeline.Len()
			exec.scopedRequest, exec.scopedResponse = req-baseReq, resp-baseResp
		}
	}
	exec.policy = NewRetryPolicy(retry)
	return exec
}

// Do builds, signs and executes a call. Failures are returned as *Error,
// except errors raised by transformers, which are returned unmodified.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewCanceledError(err)
	}

	exec := c.resolve(req.Options)
	desc, err := c.builder(exec.headers).Build(req.Method, req.Path, req.Query, req.Body, req.Options)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewCanceledError(ctx.Err())
		}
		return nil, err
	}

	return c.send(ctx, desc, exec)
}

// NewBuilder returns a Builder carrying the client's current settings and
// headers, for callers that build descriptors ahead of Send.
func (c *Client) NewBuilder() *Builder {
	return c.builder(c.state.Load().headers)
}

func (c *Client) builder(headers http.Header) *Builder {
	return &Builder{
		BaseURL:         c.config.BaseURL,
		UserAgent:       c.config.UserAgent,
		Timeout:         c.config.Timeout,
		Headers:         headers,
		Credentials:     c.credentials,
		Serializer:      c.serializer,
		RequestIDHeader: c.config.RequestIDHeader,
	}
}

// Send executes a descriptor built by Builder. The retry policy and
// transformers come from the client and the descriptor's call options.
func (c *Client) Send(ctx context.Context, desc *Descriptor) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewCanceledError(err)
	}
	return c.send(ctx, desc, c.resolve(desc.CallOptions()))
}
