package logger

import "time"

// Standard field keys used by the client pipeline.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldAttempt   = "attempt"
	FieldBackoff   = "backoff_ms"
	FieldStatus    = "status"
	FieldKind      = "kind"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map from alternating key-value pairs.
//
//	logger.Debug("sent", logger.Fields("method", "GET", "status", 200))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(err error, kvs ...any) map[string]any {
	m := Fields(kvs...)
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}

// DurationFields adds the elapsed time to fields in milliseconds.
func DurationFields(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
