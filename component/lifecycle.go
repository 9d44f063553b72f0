package component

import (
	"context"
	"errors"
	"fmt"
)

// StartAll starts components in order. If one fails, the components
// already started are stopped in reverse order and the start error is
// returned.
func StartAll(ctx context.Context, components ...Component) error {
	for i, c := range components {
		if err := c.Start(ctx); err != nil {
			stopErr := StopAll(ctx, components[:i]...)
			return errors.Join(fmt.Errorf("component %s: start: %w", c.Name(), err), stopErr)
		}
	}
	return nil
}

// StopAll stops components in reverse order and joins their errors.
func StopAll(ctx context.Context, components ...Component) error {
	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("component %s: stop: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// HealthAll collects the health of every component. The overall status is
// the worst individual status.
func HealthAll(ctx context.Context, components ...Component) (HealthStatus, []Health) {
	overall := StatusHealthy
	out := make([]Health, 0, len(components))
	for _, c := range components {
		h := c.Health(ctx)
		if h.Name == "" {
			h.Name = c.Name()
		}
		out = append(out, h)
		switch h.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}
	return overall, out
}

// Describe returns c's description, falling back to its name.
func Describe(c Component) Description {
	d := Description{Name: c.Name()}
	if dc, ok := c.(Describable); ok {
		d = dc.Describe()
		if d.Name == "" {
			d.Name = c.Name()
		}
	}
	return d
}
