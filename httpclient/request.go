package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Method is an HTTP method accepted by the client.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPatch  Method = http.MethodPatch
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPatch, MethodPost, MethodPut, MethodDelete:
		return true
	}
	return false
}

// Request is one logical call.
type Request struct {
	// Method defaults to GET.
	Method Method
	// Path is appended verbatim to the client's base URL.
	Path string
	// Query parameters, encoded with EncodeQuery.
	Query Params
	// Body is serialized with the client's Serializer. Nil, including a
	// nil pointer, sends no body.
	Body any
	// Options overrides client settings for this call only.
	Options *CallOptions
}

// CallOptions overrides client-wide settings for a single call. Zero
// fields inherit the client value. Transformers run after the client-wide
// ones.
type CallOptions struct {
	// Timeout bounds each attempt.
	Timeout time.Duration
	// MaxPages and MaxItems override the pagination ceilings.
	MaxPages int
	MaxItems int
	// Retry fields override the client retry options one by one.
	Retry RetryOptions
	// TransformRequest and TransformResponse extend the client pipeline.
	TransformRequest  []TransformRequestFunc
	TransformResponse []TransformResponseFunc
}

// Descriptor is the immutable, signed form of one logical call.
type Descriptor struct {
	id       string
	method   Method
	basePath string
	path     string
	query    string
	body     []byte
	header   http.Header
	timeout  time.Duration
	call     *CallOptions
}

// ID returns the request id assigned at build time.
func (d *Descriptor) ID() string { return d.id }

// Method returns the HTTP method.
func (d *Descriptor) Method() Method { return d.method }

// BasePath returns the client base URL.
func (d *Descriptor) BasePath() string { return d.basePath }

// Path returns the request path.
func (d *Descriptor) Path() string { return d.path }

// Query returns the encoded query string including the leading "?", or "".
func (d *Descriptor) Query() string { return d.query }

// URL returns base path + path + query, the URL that was signed.
func (d *Descriptor) URL() string { return d.basePath + d.path + d.query }

// Body returns a copy of the serialized body, or nil.
func (d *Descriptor) Body() []byte { return bytes.Clone(d.body) }

// Header returns a copy of the request headers.
func (d *Descriptor) Header() http.Header { return d.header.Clone() }

// Timeout returns the per-attempt timeout.
func (d *Descriptor) Timeout() time.Duration { return d.timeout }

// CallOptions returns the call options exactly as supplied.
func (d *Descriptor) CallOptions() *CallOptions { return d.call }

// NewRequest creates a fresh *http.Request for one attempt.
func (d *Descriptor) NewRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if d.body != nil {
		body = bytes.NewReader(d.body)
	}
	req, err := http.NewRequestWithContext(ctx, string(d.method), d.URL(), body)
	if err != nil {
		return nil, NewClientError("create request", err)
	}
	req.Header = d.header.Clone()
	return req, nil
}

// Builder turns logical calls into descriptors. It performs no I/O.
type Builder struct {
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration
	Headers         http.Header
	Credentials     Credentials
	Serializer      Serializer
	RequestIDHeader string
}

// Build validates, serializes and signs a call. Headers are layered as
// defaults, then auth headers, then client headers, each layer replacing
// keys set by the one before.
func (b *Builder) Build(method Method, path string, params Params, body any, call *CallOptions) (*Descriptor, error) {
	if method == "" {
		method = MethodGet
	}
	if !method.Valid() {
		return nil, NewClientError(fmt.Sprintf("unsupported method %q", method), nil)
	}

	var payload []byte
	if _, ok := deref(body); ok {
		ser := b.Serializer
		if ser == nil {
			ser = JSONSerializer{}
		}
		data, err := ser.Marshal(body)
		if err != nil {
			return nil, NewClientError("serialize body", err)
		}
		payload = data
	}

	query := EncodeQuery(params)

	auth, err := Sign(method, b.BaseURL, path, query, payload, b.Credentials)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	if b.UserAgent != "" {
		header.Set("User-Agent", b.UserAgent)
	}
	for k, v := range auth {
		header[k] = v
	}
	for k, v := range b.Headers {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	id := uuid.NewString()
	if b.RequestIDHeader != "" {
		header.Set(b.RequestIDHeader, id)
	}

	return &Descriptor{
		id:       id,
		method:   method,
		basePath: b.BaseURL,
		path:     path,
		query:    query,
		body:     payload,
		header:   header,
		timeout:  resolveTimeout(call, b.Timeout),
		call:     call,
	}, nil
}

func resolveTimeout(call *CallOptions, clientTimeout time.Duration) time.Duration {
	if call != nil && call.Timeout > 0 {
		return call.Timeout
	}
	if clientTimeout > 0 {
		return clientTimeout
	}
	return defaultTimeout
}
