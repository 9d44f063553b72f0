// Package observability wires OpenTelemetry tracing and metrics for the
// HTTP client.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("orders-sync"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("orders-sync"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter("httpclient"))
//	client, err := httpclient.New(cfg, httpclient.WithMetrics(metrics))
package observability
