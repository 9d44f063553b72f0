package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies client errors.
type ErrorKind int

const (
	// KindClient is an input or construction problem detected before any
	// network attempt. It never carries a status code.
	KindClient ErrorKind = iota
	// KindTransport is a network-level failure or a per-attempt timeout.
	KindTransport
	// KindCanceled means the caller's context ended the call.
	KindCanceled
	// KindAPI is a terminal HTTP status in [400,599].
	KindAPI
	// KindMissingScope is a 403 whose body reports missing API key scopes.
	KindMissingScope
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindTransport:
		return "transport"
	case KindCanceled:
		return "canceled"
	case KindAPI:
		return "api"
	case KindMissingScope:
		return "missing_scope"
	default:
		return "unknown"
	}
}

// MissingScopeMessage is the message of every KindMissingScope error.
const MissingScopeMessage = "403 API Error: missing required scopes. Please verify your API keys include the necessary permissions."

const (
	missingScopeMarker = `"error_details":"Missing required scopes"`
	maxDetailLen       = 512
)

// Error is the single error type returned by the client.
type Error struct {
	// Kind classifies the error.
	Kind ErrorKind
	// StatusCode is the HTTP status (0 unless Kind is KindAPI or KindMissingScope).
	StatusCode int
	// Message describes the error.
	Message string
	// Response is the terminal response for API errors.
	Response *Response
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindAPI || e.Kind == KindMissingScope {
		return e.Message
	}
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("httpclient: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewClientError creates a KindClient error.
func NewClientError(msg string, err error) *Error {
	return &Error{Kind: KindClient, Message: msg, Err: err}
}

// NewTransportError creates a KindTransport error wrapping err.
func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// NewCanceledError creates a KindCanceled error wrapping the context error.
func NewCanceledError(err error) *Error {
	return &Error{Kind: KindCanceled, Err: err}
}

// Classifier turns a terminal response into an error. It returns nil when
// the response is not a failure.
type Classifier func(resp *Response) error

// Classify is the default Classifier. Statuses outside [400,599] pass
// through. A 403 whose body carries the missing-scope marker becomes
// KindMissingScope; every other failure becomes KindAPI with the message
// "<status> API Error: <reason> <detail>".
func Classify(resp *Response) error {
	if resp == nil || resp.StatusCode < 400 || resp.StatusCode > 599 {
		return nil
	}

	body := string(resp.Body)
	if resp.StatusCode == 403 && strings.Contains(body, missingScopeMarker) {
		return &Error{
			Kind:       KindMissingScope,
			StatusCode: resp.StatusCode,
			Message:    MissingScopeMessage,
			Response:   resp,
		}
	}

	msg := fmt.Sprintf("%d API Error: %s", resp.StatusCode, resp.StatusText)
	if detail := errorDetail(resp.Body); detail != "" {
		msg += " " + detail
	}
	return &Error{
		Kind:       KindAPI,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Response:   resp,
	}
}

// errorDetail returns the "message" field of a JSON body, or the trimmed
// body text truncated to maxDetailLen bytes.
func errorDetail(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxDetailLen {
		text = text[:maxDetailLen]
	}
	return text
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsClient reports whether err is a KindClient error.
func IsClient(err error) bool { return isKind(err, KindClient) }

// IsTransport reports whether err is a KindTransport error.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsCanceled reports whether err is a KindCanceled error.
func IsCanceled(err error) bool { return isKind(err, KindCanceled) }

// IsAPI reports whether err is a KindAPI or KindMissingScope error.
func IsAPI(err error) bool { return isKind(err, KindAPI) || isKind(err, KindMissingScope) }

// IsMissingScope reports whether err is a KindMissingScope error.
func IsMissingScope(err error) bool { return isKind(err, KindMissingScope) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := AsError(err); ok {
		return e.StatusCode
	}
	return 0
}

// statusError is the internal outcome of an attempt that received a
// failure status. It is classified only once retrying stops.
type statusError struct {
	resp *Response
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: HTTP %d", e.resp.StatusCode)
}
