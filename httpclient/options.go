package httpclient

import (
	"net/http"

	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
)

// Option configures a Client at construction.
type Option func(*Client)

// WithCredentials signs every request with creds.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.credentials = creds }
}

// WithTransformRequest registers client-wide request transformers.
func WithTransformRequest(fns ...TransformRequestFunc) Option {
	return func(c *Client) { c.initRequest = append(c.initRequest, fns...) }
}

// WithTransformResponse registers client-wide response transformers.
func WithTransformResponse(fns ...TransformResponseFunc) Option {
	return func(c *Client) { c.initResponse = append(c.initResponse, fns...) }
}

// WithLogger sets the logger. Defaults to logger.Get("httpclient").
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records call metrics on m.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClassifier replaces Classify for terminal failure statuses.
func WithClassifier(fn Classifier) Option {
	return func(c *Client) {
		if fn != nil {
			c.classifier = fn
		}
	}
}

// WithHTTPClient uses hc for I/O instead of a client built from Config.
// Timeouts are still applied per attempt through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSerializer replaces the JSON serializer for bodies and Decode.
func WithSerializer(s Serializer) Option {
	return func(c *Client) {
		if s != nil {
			c.serializer = s
		}
	}
}
