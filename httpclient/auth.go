package httpclient

import (
	"encoding/base64"
	"net/http"
)

// Credentials computes the authentication headers for one request. fullURL
// is base path + path + encoded query, and body is the serialized request
// body ("" when there is none). The same strings are sent on the wire.
type Credentials interface {
	GenerateAuthHeaders(method, fullURL, body string) (map[string]string, error)
}

// CredentialsFunc adapts a function to Credentials.
type CredentialsFunc func(method, fullURL, body string) (map[string]string, error)

// GenerateAuthHeaders calls f.
func (f CredentialsFunc) GenerateAuthHeaders(method, fullURL, body string) (map[string]string, error) {
	return f(method, fullURL, body)
}

// BearerToken returns credentials that send a static bearer token.
func BearerToken(token string) Credentials {
	return staticHeaders{"Authorization": "Bearer " + token}
}

// BasicAuth returns credentials that send HTTP basic authentication.
func BasicAuth(username, password string) Credentials {
	raw := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return staticHeaders{"Authorization": "Basic " + raw}
}

// APIKey returns credentials that send key in the named header.
// An empty name defaults to "X-API-Key".
func APIKey(name, key string) Credentials {
	if name == "" {
		name = "X-API-Key"
	}
	return staticHeaders{name: key}
}

type staticHeaders map[string]string

func (s staticHeaders) GenerateAuthHeaders(string, string, string) (map[string]string, error) {
	return s, nil
}

// Sign computes the authentication headers for a request. Nil creds
// produce an empty header. A failure is a KindClient error since the
// request never reached the wire.
func Sign(method Method, basePath, path, query string, body []byte, creds Credentials) (http.Header, error) {
	h := make(http.Header)
	if creds == nil {
		return h, nil
	}

	headers, err := creds.GenerateAuthHeaders(string(method), basePath+path+query, string(body))
	if err != nil {
		return nil, NewClientError("sign request", err)
	}
	for k, v := range headers {
		h.Set(k, v)
	}
	return h, nil
}
