package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/coinbase-samples/core-go/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment.
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricRequests        = "httpclient.requests"
	MetricAttempts        = "httpclient.attempts"
	MetricRetries         = "httpclient.retries"
	MetricRequestDuration = "httpclient.request.duration"
	MetricActive          = "httpclient.requests.active"
	MetricErrors          = "httpclient.errors"
)

// ClientMetrics holds the instruments recorded by the HTTP client.
type ClientMetrics struct {
	requests        metric.Int64Counter
	attempts        metric.Int64Counter
	retries         metric.Int64Counter
	requestDuration metric.Float64Histogram
	active          metric.Int64UpDownCounter
	errors          metric.Int64Counter
}

// NewClientMetrics creates the client instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Logical calls completed, by method and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}

	attempts, err := meter.Int64Counter(MetricAttempts,
		metric.WithDescription("Wire attempts issued, including retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricAttempts, err)
	}

	retries, err := meter.Int64Counter(MetricRetries,
		metric.WithDescription("Retries scheduled after a retryable failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRetries, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of logical calls including retry waits"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	active, err := meter.Int64UpDownCounter(MetricActive,
		metric.WithDescription("Calls currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricActive, err)
	}

	errorsTotal, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Terminal errors by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	return &ClientMetrics{
		requests:        requests,
		attempts:        attempts,
		retries:         retries,
		requestDuration: requestDuration,
		active:          active,
		errors:          errorsTotal,
	}, nil
}

// RecordStart marks a call as in flight.
func (m *ClientMetrics) RecordStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1)
}

// RecordAttempt counts one wire attempt.
func (m *ClientMetrics) RecordAttempt(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordRetry counts one scheduled retry.
func (m *ClientMetrics) RecordRetry(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordEnd closes a call: outcome is "ok" or the error kind.
func (m *ClientMetrics) RecordEnd(ctx context.Context, method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
	))
	if outcome != "ok" {
		m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", outcome)))
	}
}
