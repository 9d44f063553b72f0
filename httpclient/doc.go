// Package httpclient builds, signs and executes calls against an
// authenticated REST API.
//
// A call goes through these steps:
//
//   - Builder serializes the body, encodes the query with EncodeQuery and
//     signs base path + path + query with the configured Credentials.
//   - The resulting Descriptor is executed under a RetryPolicy. Each
//     attempt runs the request transformers, then performs the I/O with a
//     per-attempt timeout.
//   - Optional guards bound the call: a Bulkhead caps calls in flight, a
//     rate limiter spaces attempts, and a CircuitBreaker fails attempts
//     fast after repeated transport failures or 5xx statuses.
//   - A terminal status in [400,599] is turned into an *Error by the
//     Classifier. On success the response transformers run once.
//
// Client-wide headers and transformers can be added after construction.
// Each change publishes a new snapshot, so calls in flight keep the
// configuration they started with. Per-call CallOptions overlay the
// client configuration for that call only.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com/v1",
//	    Retry:   httpclient.RetryOptions{Retries: 3},
//	}, httpclient.WithCredentials(creds))
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: httpclient.MethodGet,
//	    Path:   "/orders",
//	    Query:  httpclient.Params{{Key: "limit", Value: 10}},
//	})
//
// # Typed Calls
//
//	orders, err := httpclient.Get[OrderList](client, ctx, "/orders",
//	    httpclient.WithParam("product_ids", []string{"BTC-USD", "ETH-USD"}))
package httpclient
