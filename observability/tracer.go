package observability

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/coinbase-samples/core-go/logger"
)

const defaultTracerName = "github.com/coinbase-samples/core-go/httpclient"

// Span names.
const (
	SpanHTTPSend    = "httpclient.send"
	EventRetry      = "retry"
	EventTransforms = "transforms.applied"
)

// Attribute keys.
const (
	AttrMethod     = "http.request.method"
	AttrURLPath    = "url.path"
	AttrServerAddr = "server.address"
	AttrStatusCode = "http.response.status_code"
	AttrAttempt    = "httpclient.attempt"
	AttrAttempts   = "httpclient.attempts"
	AttrRequestID  = "httpclient.request_id"
	AttrErrorKind  = "httpclient.error_kind"
	AttrBackoffMs  = "httpclient.backoff_ms"

	AttrTransformsRequest  = "httpclient.transforms.request"
	AttrTransformsResponse = "httpclient.transforms.response"
)

// TracerConfig configures the OpenTelemetry tracer.
type TracerConfig struct {
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
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// DefaultTracerConfig returns sensible defaults for development.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// InitTracer initializes the OpenTelemetry tracer provider and installs it
// globally with W3C trace-context propagation. The returned provider must
// be shut down on exit.
func InitTracer(ctx context.Context, config TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Get("observability").Info("tracer initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"sample_rate", config.SampleRate,
	))

	return tp, nil
}

func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", environment),
		),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartClientSpan starts a client-kind span for one logical call.
func StartClientSpan(ctx context.Context, method, host, path, requestID string) (context.Context, trace.Span) {
	return Tracer(defaultTracerName).Start(ctx, SpanHTTPSend,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrMethod, method),
			attribute.String(AttrServerAddr, host),
			attribute.String(AttrURLPath, path),
			attribute.String(AttrRequestID, requestID),
		),
	)
}

// RecordRetry adds a retry event to the span in ctx.
func RecordRetry(ctx context.Context, attempt int, backoffMs int64, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int(AttrAttempt, attempt),
		attribute.Int64(AttrBackoffMs, backoffMs),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error.message", err.Error()))
	}
	span.AddEvent(EventRetry, trace.WithAttributes(attrs...))
}

// RecordTransforms adds an event noting the call-scoped transformers
// appended to the client pipeline.
func RecordTransforms(ctx context.Context, request, response int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventTransforms, trace.WithAttributes(
		attribute.Int(AttrTransformsRequest, request),
		attribute.Int(AttrTransformsResponse, response),
	))
}

// EndClientSpan records the outcome of a call and ends the span. kind is
// empty on success.
func EndClientSpan(span trace.Span, status, attempts int, kind string, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int(AttrStatusCode, status))
	}
	span.SetAttributes(attribute.Int(AttrAttempts, attempts))
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorKind, kind))
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InjectTraceHeaders writes the trace context in ctx into h using the
// global propagator.
func InjectTraceHeaders(ctx context.Context, h http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
}
