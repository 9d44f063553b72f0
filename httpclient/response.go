package httpclient

import (
	"net/http"
	"strconv"
	"strings"
)

// Response is the normalized result of a call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// StatusText is the reason phrase, e.g. "Not Found".
	StatusText string
	// Headers holds the response headers with lower-cased names. Repeated
	// headers are joined with ", ".
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
	// RequestID is the id of the descriptor that produced the response.
	RequestID string

	serializer Serializer
}

// Header returns the value of the named header, case-insensitively.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400 && r.StatusCode <= 599
}

// Decode unmarshals the body into v with the client's serializer. An
// empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	ser := r.serializer
	if ser == nil {
		ser = JSONSerializer{}
	}
	if err := ser.Unmarshal(r.Body, v); err != nil {
		return NewClientError("decode response", err)
	}
	return nil
}

func newResponse(resp *http.Response, body []byte, requestID string, ser Serializer) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    normalizeHeaders(resp.Header),
		Body:       body,
		RequestID:  requestID,
		serializer: ser,
	}
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func normalizeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		key := strings.ToLower(k)
		if prev, ok := out[key]; ok {
			out[key] = prev + ", " + strings.Join(v, ", ")
			continue
		}
		out[key] = strings.Join(v, ", ")
	}
	return out
}
