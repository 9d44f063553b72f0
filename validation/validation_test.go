package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	Retries  int    `mapstructure:"retries" validate:"gte=0"`
	Mode     string `validate:"omitempty,oneof=fast slow"`
	Statuses []int  `mapstructure:"retryable_statuses" validate:"dive,min=400,max=599"`
}

func TestValidate_Valid(t *testing.T) {
	s := sample{BaseURL: "https://api.example.com/v1", Retries: 2, Mode: "fast", Statuses: []int{429, 503}}
	if err := Validate(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	s := sample{BaseURL: "not a url", Retries: -1, Mode: "medium", Statuses: []int{200}}

	err := Validate(s)
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	for _, field := range []string{"base_url", "retries", "mode", "retryable_statuses[0]"} {
		if !ve.Has(field) {
			t.Errorf("expected failure for %q, got %v", field, ve.Fields)
		}
	}
	if !strings.Contains(err.Error(), "base_url: must be a valid URL") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidate_Required(t *testing.T) {
	err := Validate(sample{})
	ve, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !ve.Has("base_url") {
		t.Errorf("expected base_url to be required, got %v", ve.Fields)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if c.Err() != nil {
		t.Fatal("empty collector should return nil")
	}

	c.Check(true, "ok", "never").
		Check(false, "timeout", "must be positive").
		Merge(Validate(sample{BaseURL: "https://x.io"})).
		Merge(errors.New("plain"))

	ve, ok := AsError(c.Err())
	if !ok {
		t.Fatal("expected *Error")
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 failures, got %v", ve.Fields)
	}
	if !ve.Has("timeout") || !ve.Has("_") {
		t.Errorf("unexpected fields %v", ve.Fields)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxPages"); got != "max_pages" {
		t.Errorf("expected max_pages, got %q", got)
	}
}
