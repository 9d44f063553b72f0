package httpclient

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/coinbase-samples/core-go/resilience"
)

const (
	defaultMaxRetries      = 3
	exponentialBase        = 100 * time.Millisecond
	exponentialCap         = 30 * time.Second
	exponentialFactor      = 2.0
	exponentialJitterRatio = 0.2
)

// RetryOptions selects one retry strategy. When several fields are set the
// first non-zero one in the order Retries, RetryDelay, RetryExponential,
// RetryCustom wins.
type RetryOptions struct {
	// Retries retries up to this many times with no delay.
	Retries int `yaml:"retries" mapstructure:"retries" validate:"gte=0"`
	// RetryDelay waits RetryDelay * attempt before each retry.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay" validate:"gte=0"`
	// RetryExponential waits on an exponential curve with jitter.
	RetryExponential bool `yaml:"retry_exponential" mapstructure:"retry_exponential"`
	// RetryCustom returns the wait before the given attempt.
	RetryCustom func(attempt int) time.Duration `yaml:"-" mapstructure:"-"`
	// MaxRetries caps the delay strategies. Defaults to 3.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
	// RetryableStatuses lists HTTP statuses that are retried. By default
	// only transport failures are.
	RetryableStatuses []int `yaml:"retryable_statuses" mapstructure:"retryable_statuses" validate:"dive,gte=400,lte=599"`
}

// overlay returns o with every non-zero field of call applied on top.
func (o RetryOptions) overlay(call RetryOptions) RetryOptions {
	if call.Retries > 0 {
		o.Retries = call.Retries
	}
	if call.RetryDelay > 0 {
		o.RetryDelay = call.RetryDelay
	}
	if call.RetryExponential {
		o.RetryExponential = true
	}
	if call.RetryCustom != nil {
		o.RetryCustom = call.RetryCustom
	}
	if call.MaxRetries > 0 {
		o.MaxRetries = call.MaxRetries
	}
	if len(call.RetryableStatuses) > 0 {
		o.RetryableStatuses = slices.Clone(call.RetryableStatuses)
	}
	return o
}

// Strategy identifies the active retry rule.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyFixed
	StrategyLinear
	StrategyExponential
	StrategyCustom
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyFixed:
		return "fixed"
	case StrategyLinear:
		return "linear"
	case StrategyExponential:
		return "exponential"
	case StrategyCustom:
		return "custom"
	default:
		return "none"
	}
}

// RetryPolicy decides whether and when an attempt may start.
type RetryPolicy struct {
	strategy  Strategy
	retries   int
	delay     time.Duration
	custom    func(int) time.Duration
	retryable []int
}

// NewRetryPolicy selects the strategy from o.
func NewRetryPolicy(o RetryOptions) RetryPolicy {
	p := RetryPolicy{retryable: slices.Clone(o.RetryableStatuses)}
	ceiling := o.MaxRetries
	if ceiling <= 0 {
		ceiling = defaultMaxRetries
	}

	switch {
	case o.Retries > 0:
		p.strategy, p.retries = StrategyFixed, o.Retries
	case o.RetryDelay > 0:
		p.strategy, p.retries, p.delay = StrategyLinear, ceiling, o.RetryDelay
	case o.RetryExponential:
		p.strategy, p.retries = StrategyExponential, ceiling
	case o.RetryCustom != nil:
		p.strategy, p.retries, p.custom = StrategyCustom, ceiling, o.RetryCustom
	}
	return p
}

// Strategy returns the active strategy.
func (p RetryPolicy) Strategy() Strategy { return p.strategy }

// MaxAttempts returns the attempt ceiling including the first attempt.
func (p RetryPolicy) MaxAttempts() int { return p.retries + 1 }

// Delay returns the wait before attempt, the zero-based index of the
// attempt about to start. It reports false when no attempt may start.
func (p RetryPolicy) Delay(attempt int) (time.Duration, bool) {
	if attempt <= 0 {
		return 0, attempt == 0
	}
	if attempt > p.retries {
		return 0, false
	}

	var d time.Duration
	switch p.strategy {
	case StrategyLinear:
		d = p.delay * time.Duration(attempt)
	case StrategyExponential:
		d = resilience.ExponentialBackoff(attempt, exponentialBase, exponentialCap, exponentialFactor, exponentialJitterRatio)
	case StrategyCustom:
		d = p.custom(attempt)
	}
	return max(d, 0), true
}

// Retryable reports whether the failure of an attempt may be retried:
// transport failures, and statuses listed in RetryableStatuses.
// Cancellation and an open circuit never are.
func (p RetryPolicy) Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return slices.Contains(p.retryable, se.resp.StatusCode)
	}
	return IsTransport(err)
}

// config adapts the policy to resilience.Retry.
func (p RetryPolicy) config(onRetry func(attempt int, err error, backoff time.Duration)) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: p.MaxAttempts(),
		Backoff: func(attempt int) time.Duration {
			d, _ := p.Delay(attempt)
			return d
		},
		RetryIf: p.Retryable,
		OnRetry: onRetry,
	}
}
