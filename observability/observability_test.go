package observability

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestClientSpanLifecycle(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartClientSpan(context.Background(), "GET", "api.example.com", "/v1/orders", "req-1")
	RecordRetry(ctx, 1, 200, errors.New("connection reset"))
	EndClientSpan(span, 503, 2, "api", errors.New("503"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanHTTPSend {
		t.Errorf("expected span %q, got %q", SpanHTTPSend, s.Name())
	}
	if len(s.Events()) == 0 {
		t.Fatal("expected events on span")
	}
	var sawRetry bool
	for _, ev := range s.Events() {
		if ev.Name == EventRetry {
			sawRetry = true
		}
	}
	if !sawRetry {
		t.Error("expected a retry event")
	}

	attrs := map[string]any{}
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[AttrStatusCode] != int64(503) {
		t.Errorf("expected status 503, got %v", attrs[AttrStatusCode])
	}
	if attrs[AttrAttempts] != int64(2) {
		t.Errorf("expected 2 attempts, got %v", attrs[AttrAttempts])
	}
	if attrs[AttrErrorKind] != "api" {
		t.Errorf("expected error kind api, got %v", attrs[AttrErrorKind])
	}
}

func TestInjectTraceHeaders(t *testing.T) {
	installRecorder(t)
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	ctx, span := StartClientSpan(context.Background(), "GET", "h", "/", "id")
	defer span.End()

	h := http.Header{}
	InjectTraceHeaders(ctx, h)
	if h.Get("Traceparent") == "" {
		t.Error("expected traceparent header to be injected")
	}
}

func TestClientMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewClientMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordStart(ctx)
	m.RecordAttempt(ctx, "GET")
	m.RecordRetry(ctx, "GET")
	m.RecordAttempt(ctx, "GET")
	m.RecordEnd(ctx, "GET", "transport", 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				sums[md.Name] = total
			}
		}
	}

	if sums[MetricAttempts] != 2 {
		t.Errorf("expected 2 attempts, got %d", sums[MetricAttempts])
	}
	if sums[MetricRetries] != 1 {
		t.Errorf("expected 1 retry, got %d", sums[MetricRetries])
	}
	if sums[MetricErrors] != 1 {
		t.Errorf("expected 1 error, got %d", sums[MetricErrors])
	}
	if sums[MetricActive] != 0 {
		t.Errorf("expected no active calls, got %d", sums[MetricActive])
	}
}

func TestClientMetrics_NilSafe(t *testing.T) {
	var m *ClientMetrics
	m.RecordStart(context.Background())
	m.RecordEnd(context.Background(), "GET", "ok", time.Millisecond)
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("svc")
	if tc.ServiceName != "svc" || tc.SampleRate != 1.0 {
		t.Errorf("unexpected tracer defaults %+v", tc)
	}
	mc := DefaultMeterConfig("svc")
	if mc.Interval != 15*time.Second {
		t.Errorf("unexpected meter interval %v", mc.Interval)
	}
}
