package util

import (
	"net/http"
	"strings"
)

// sensitiveHeaders are masked by RedactHeaders. Keys are canonical.
var sensitiveHeaders = map[string]bool{
	"Authorization":        true,
	"Proxy-Authorization":  true,
	"Cookie":               true,
	"X-Api-Key":            true,
	"Cb-Access-Key":        true,
	"Cb-Access-Sign":       true,
	"Cb-Access-Passphrase": true,
}

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// MaskSecret hides sensitive parts of a string for safe display in logs.
// If the string is not longer than visiblePrefix, it is fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// RedactHeaders flattens h for logging. Credentials and signatures are
// masked, extra names are masked as well.
func RedactHeaders(h http.Header, extra ...string) map[string]string {
	masked := make(map[string]bool, len(extra))
	for _, name := range extra {
		masked[http.CanonicalHeaderKey(name)] = true
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		key := http.CanonicalHeaderKey(k)
		value := strings.Join(v, ", ")
		if sensitiveHeaders[key] || masked[key] {
			value = MaskSecret(value, 0)
		}
		out[key] = value
	}
	return out
}
