package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
)

func TestClient_TracePropagationAndSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("Traceparent")
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, PropagateTrace: true})
	_, err := c.Do(context.Background(), Request{Path: "/v1/orders"})
	if !IsAPI(err) {
		t.Fatalf("expected API error, got %v", err)
	}

	if traceparent == "" {
		t.Error("expected traceparent header on the wire")
	}
	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != observability.SpanHTTPSend {
		t.Fatalf("expected one client span, got %d", len(spans))
	}
	if !strings.Contains(traceparent, spans[0].SpanContext().TraceID().String()) {
		t.Error("propagated trace id does not match the span")
	}
}

func TestClient_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observability.NewClientMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("refused")
	})
	c := newTestClient(t, Config{BaseURL: "http://api.invalid", Retry: RetryOptions{Retries: 1}},
		WithMetrics(m), WithHTTPClient(&http.Client{Transport: rt}))
	_, _ = c.Do(context.Background(), Request{Path: "/"})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	if sums[observability.MetricAttempts] != 2 || sums[observability.MetricRetries] != 1 || sums[observability.MetricErrors] != 1 {
		t.Errorf("unexpected metrics %v", sums)
	}
}

func TestClient_LogsRetries(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: "json", Writer: &buf}, "httpclient")

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("refused")
	})
	c, err := New(Config{BaseURL: "http://api.invalid", Retry: RetryOptions{Retries: 1}},
		WithLogger(log), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = c.Do(context.Background(), Request{Path: "/x"})

	var sawRetry, sawFailure bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		switch entry["message"] {
		case "retrying request":
			sawRetry = entry["level"] == "warn" && entry[logger.FieldURL] == "http://api.invalid/x"
		case "request failed":
			sawFailure = entry[logger.FieldKind] == "transport"
		}
	}
	if !sawRetry || !sawFailure {
		t.Errorf("expected retry and failure logs, got:\n%s", buf.String())
	}
}

func TestClient_RecordsCallTransforms(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prevTP) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	passReq := func(r *http.Request) (*http.Request, error) { return r, nil }
	passResp := func(r *Response) (*Response, error) { return r, nil }
	c := newTestClient(t, Config{BaseURL: srv.URL}, WithTransformRequest(passReq))

	if _, err := c.Do(context.Background(), Request{Path: "/plain"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Do(context.Background(), Request{Path: "/scoped", Options: &CallOptions{
		TransformRequest:  []TransformRequestFunc{passReq, passReq},
		TransformResponse: []TransformResponseFunc{passResp},
	}}); err != nil {
		t.Fatal(err)
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected two spans, got %d", len(spans))
	}
	for _, ev := range spans[0].Events() {
		if ev.Name == observability.EventTransforms {
			t.Error("a call without scoped transformers should not record the event")
		}
	}

	var found bool
	for _, ev := range spans[1].Events() {
		if ev.Name != observability.EventTransforms {
			continue
		}
		found = true
		attrs := map[string]int64{}
		for _, kv := range ev.Attributes {
			attrs[string(kv.Key)] = kv.Value.AsInt64()
		}
		if attrs[observability.AttrTransformsRequest] != 2 || attrs[observability.AttrTransformsResponse] != 1 {
			t.Errorf("unexpected transform counts %v", attrs)
		}
	}
	if !found {
		t.Error("expected transforms event on the scoped call")
	}
}

func TestClient_DebugLogRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: "json", Writer: &buf}, "httpclient")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, WithLogger(log), WithCredentials(BearerToken("s3cret")))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Do(context.Background(), Request{Path: "/"}); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(buf.String(), "s3cret") {
		t.Fatalf("token leaked into logs:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `"Authorization":"***"`) {
		t.Errorf("expected masked authorization header in logs:\n%s", buf.String())
	}
}
