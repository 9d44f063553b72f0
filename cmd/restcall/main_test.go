package main

import (
	"testing"

	"github.com/coinbase-samples/core-go/credentials"
	"github.com/coinbase-samples/core-go/httpclient"
)

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest([]string{"post", "/orders", `{"side":"BUY"}`}, []string{"limit=5", "cursor=abc"}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if req.Method != httpclient.MethodPost || req.Path != "/orders" {
		t.Errorf("unexpected request %+v", req)
	}
	if len(req.Query) != 2 || req.Query[0].Key != "limit" {
		t.Errorf("unexpected query %+v", req.Query)
	}
	body, ok := req.Body.(map[string]any)
	if !ok || body["side"] != "BUY" {
		t.Errorf("unexpected body %#v", req.Body)
	}
	if req.Options == nil || req.Options.Retry.Retries != 2 {
		t.Errorf("unexpected options %+v", req.Options)
	}
}

func TestBuildRequest_Errors(t *testing.T) {
	if _, err := buildRequest([]string{"GET", "/x"}, []string{"novalue"}, 0); err == nil {
		t.Error("expected error for malformed query")
	}
	if _, err := buildRequest([]string{"POST", "/x", "{"}, nil, 0); err == nil {
		t.Error("expected error for malformed body")
	}
	req, err := buildRequest([]string{"GET", "/x"}, nil, 0)
	if err != nil || req.Options != nil {
		t.Errorf("expected no call options, got %+v, %v", req.Options, err)
	}
}

func TestNewCredentials(t *testing.T) {
	creds, err := newCredentials(AuthConfig{})
	if err != nil || creds != nil {
		t.Errorf("expected no credentials, got %v, %v", creds, err)
	}

	creds, err = newCredentials(AuthConfig{Type: "HMAC", Key: "k", Secret: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := creds.(*credentials.HMAC); !ok {
		t.Errorf("expected HMAC credentials, got %T", creds)
	}

	if _, err := newCredentials(AuthConfig{Type: "jwt", PrivateKeyFile: "/nonexistent"}); err == nil {
		t.Error("expected error for missing key file")
	}
	if _, err := newCredentials(AuthConfig{Type: "oauth"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
