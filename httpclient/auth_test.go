package httpclient

import (
	"errors"
	"testing"
)

type recordingCredentials struct {
	method, url, body string
	calls             int
	headers           map[string]string
	err               error
}

func (r *recordingCredentials) GenerateAuthHeaders(method, fullURL, body string) (map[string]string, error) {
	r.calls++
	r.method, r.url, r.body = method, fullURL, body
	return r.headers, r.err
}

func TestSign_NilCredentials(t *testing.T) {
	h, err := Sign(MethodGet, "https://api.example", "/v1", "", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 0 {
		t.Errorf("expected empty header, got %v", h)
	}
}

func TestSign_PassesFullURLAndBody(t *testing.T) {
	creds := &recordingCredentials{headers: map[string]string{"cb-access-sign": "sig"}}
	h, err := Sign(MethodPost, "https://api.example", "/v1/orders", "?limit=1", []byte(`{"a":1}`), creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.method != "POST" || creds.url != "https://api.example/v1/orders?limit=1" || creds.body != `{"a":1}` {
		t.Errorf("unexpected sign input: %q %q %q", creds.method, creds.url, creds.body)
	}
	if h.Get("CB-ACCESS-SIGN") != "sig" {
		t.Errorf("expected signature header, got %v", h)
	}
}

func TestSign_Error(t *testing.T) {
	creds := CredentialsFunc(func(string, string, string) (map[string]string, error) {
		return nil, errors.New("bad key")
	})
	_, err := Sign(MethodGet, "https://api.example", "/", "", nil, creds)
	if !IsClient(err) {
		t.Fatalf("expected client error, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Error("client errors never carry a status")
	}
}

func TestStaticCredentials(t *testing.T) {
	tests := []struct {
		name   string
		creds  Credentials
		header string
		want   string
	}{
		{"bearer", BearerToken("tok"), "Authorization", "Bearer tok"},
		{"basic", BasicAuth("user", "pass"), "Authorization", "Basic dXNlcjpwYXNz"},
		{"api key default name", APIKey("", "k"), "X-API-Key", "k"},
		{"api key custom name", APIKey("X-Token", "k"), "X-Token", "k"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := Sign(MethodGet, "https://api.example", "/", "", nil, tc.creds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := h.Get(tc.header); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
