package httpclient

import (
	"context"
)

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// StatusText is the reason phrase.
	StatusText string
	// Headers are the lower-cased response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// RequestOption configures a single typed request.
type RequestOption func(*Request)

// WithQuery appends query parameters.
func WithQuery(params Params) RequestOption {
	return func(r *Request) { r.Query = append(r.Query, params...) }
}

// WithParam appends one query parameter.
func WithParam(key string, value any) RequestOption {
	return func(r *Request) { r.Query = r.Query.Add(key, value) }
}

// WithCallOptions sets per-call overrides.
func WithCallOptions(opts *CallOptions) RequestOption {
	return func(r *Request) { r.Options = opts }
}

// Call executes req and decodes the JSON response into T.
func Call[T any](c *Client, ctx context.Context, req Request) (*TypedResponse[T], error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var data T
	if err := resp.Decode(&data); err != nil {
		return nil, err
	}
	return &TypedResponse[T]{
		StatusCode: resp.StatusCode,
		StatusText: resp.StatusText,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}

// Get performs a GET request and decodes the response into T.
func Get[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, MethodGet, path, nil, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into T.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, MethodPost, path, body, opts...)
}

// Put performs a PUT request with a JSON body and decodes the response into T.
func Put[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, MethodPut, path, body, opts...)
}

// Patch performs a PATCH request with a JSON body and decodes the response into T.
func Patch[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, MethodPatch, path, body, opts...)
}

// Delete performs a DELETE request and decodes the response into T.
func Delete[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, MethodDelete, path, nil, opts...)
}

func doTyped[T any](c *Client, ctx context.Context, method Method, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	req := Request{
		Method: method,
		Path:   path,
		Body:   body,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return Call[T](c, ctx, req)
}
