package component

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	*m.events = append(*m.events, "start:"+m.name)
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	*m.events = append(*m.events, "stop:"+m.name)
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Type: "rest-client", Details: "https://api.example.com"}
}

func TestStartAll_Order(t *testing.T) {
	var events []string
	a := &mockComponent{name: "a", events: &events}
	b := &mockComponent{name: "b", events: &events}

	if err := StartAll(context.Background(), a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := StopAll(context.Background(), a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "start:a,start:b,stop:b,stop:a"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestStartAll_RollsBackOnFailure(t *testing.T) {
	var events []string
	a := &mockComponent{name: "a", events: &events}
	b := &mockComponent{name: "b", events: &events, startErr: errors.New("boom")}
	c := &mockComponent{name: "c", events: &events}

	err := StartAll(context.Background(), a, b, c)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "component b: start: boom") {
		t.Errorf("unexpected error: %v", err)
	}

	want := "start:a,start:b,stop:a"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestStopAll_JoinsErrors(t *testing.T) {
	var events []string
	a := &mockComponent{name: "a", events: &events, stopErr: errors.New("x")}
	b := &mockComponent{name: "b", events: &events, stopErr: errors.New("y")}

	err := StopAll(context.Background(), a, b)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "component a") || !strings.Contains(err.Error(), "component b") {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	var events []string
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			comps := make([]Component, len(tc.statuses))
			for i, s := range tc.statuses {
				comps[i] = &mockComponent{name: "c", events: &events, health: Health{Status: s}}
			}
			got, details := HealthAll(context.Background(), comps...)
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
			if len(details) != len(comps) || details[0].Name != "c" {
				t.Errorf("unexpected details %+v", details)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	var events []string
	plain := &mockComponent{name: "plain", events: &events}
	if d := Describe(plain); d.Name != "plain" || d.Type != "" {
		t.Errorf("unexpected description %+v", d)
	}

	described := &describedComponent{mockComponent{name: "api", events: &events}}
	d := Describe(described)
	if d.Name != "api" || d.Type != "rest-client" {
		t.Errorf("unexpected description %+v", d)
	}
}
