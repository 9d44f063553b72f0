package httpclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/coinbase-samples/core-go/resilience"
	"github.com/coinbase-samples/core-go/validation"
	"github.com/coinbase-samples/core-go/version"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultComponentName = "httpclient"
)

// Config configures the client.
type Config struct {
	// BaseURL is prepended verbatim to every request path and is part of
	// the signed URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// UserAgent is sent on every request. Defaults to version.UserAgent().
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Timeout bounds each attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are sent on every request and override signed headers of
	// the same name.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry selects the client-wide retry strategy. Zero disables retry.
	Retry RetryOptions `yaml:"retry" mapstructure:"retry"`

	// DefaultLimit, MaxPages and MaxItems bound pagination. Defaults are
	// 100, 10 and 1000.
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit" validate:"gte=0"`
	MaxPages     int `yaml:"max_pages" mapstructure:"max_pages" validate:"gte=0"`
	MaxItems     int `yaml:"max_items" mapstructure:"max_items" validate:"gte=0"`

	// RateLimit is the sustained number of attempts per second. Zero
	// disables client-side rate limiting.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
	// RateBurst is the token bucket size. Defaults to 1 when RateLimit is set.
	RateBurst int `yaml:"rate_burst" mapstructure:"rate_burst" validate:"gte=0"`

	// RequestIDHeader, when set, carries the generated request id.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// PropagateTrace injects W3C trace context headers into each attempt.
	PropagateTrace bool `yaml:"propagate_trace" mapstructure:"propagate_trace"`

	// TLS configures the transport. Ignored when WithHTTPClient is used.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// CircuitBreaker guards each wire attempt. Transport failures and 5xx
	// statuses count as failures. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// Bulkhead caps the number of calls in flight. Nil disables it.
	Bulkhead *resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultLimit
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.MaxItems <= 0 {
		c.MaxItems = defaultMaxItems
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		cb := *c.CircuitBreaker
		cb.Name = defaultComponentName
		c.CircuitBreaker = &cb
	}
	if c.Bulkhead != nil && c.Bulkhead.Name == "" {
		bh := *c.Bulkhead
		bh.Name = defaultComponentName
		c.Bulkhead = &bh
	}
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	return &cfg
}

// DefaultBulkheadConfig returns a default bulkhead config.
func DefaultBulkheadConfig(name string) *resilience.BulkheadConfig {
	cfg := resilience.DefaultBulkheadConfig(name)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var v validation.Collector
	v.Merge(validation.Validate(c))
	v.Check(!strings.HasSuffix(c.BaseURL, "?"), "base_url", "must not carry a query string")
	if c.TLS != nil {
		v.Merge(c.TLS.Validate())
	}
	if err := v.Err(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
