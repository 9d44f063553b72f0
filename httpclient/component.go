package httpclient

import (
	"context"
	"fmt"

	"github.com/coinbase-samples/core-go/component"
)

// Component wraps a Client with lifecycle management.
type Component struct {
	name   string
	client *Client
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a client component. The client is created in Start.
func NewComponent(name string, cfg Config, opts ...Option) *Component {
	return &Component{name: name, config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.name == "" {
		return defaultComponentName
	}
	return c.name
}

// Start creates the client.
func (c *Component) Start(_ context.Context) error {
	client, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// Stop releases idle connections.
func (c *Component) Stop(ctx context.Context) error {
	if c.client != nil {
		return c.client.Close(ctx)
	}
	return nil
}

// Health reports whether the client has been started.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe returns the component description.
func (c *Component) Describe() component.Description {
	cfg := c.config
	if c.client != nil {
		cfg = c.client.Config()
	}
	policy := NewRetryPolicy(cfg.Retry)
	return component.Description{
		Name:    c.Name(),
		Type:    "rest-client",
		Details: fmt.Sprintf("%s retry=%s attempts=%d", cfg.BaseURL, policy.Strategy(), policy.MaxAttempts()),
	}
}

// Client returns the underlying client. It is nil before Start.
func (c *Component) Client() *Client {
	return c.client
}
