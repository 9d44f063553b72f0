package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/coinbase-samples/core-go/component"
	"github.com/coinbase-samples/core-go/config"
	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
)

const defaultGracefulTimeout = 15 * time.Second

// App owns the lifecycle of a program's components and telemetry.
type App struct {
	Name   string
	Cfg    *config.ServiceConfig
	Logger *logger.Logger

	components      []component.Component
	started         bool
	shutdowns       []func(context.Context) error
	gracefulTimeout time.Duration

	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg and initializes the logger.
func NewApp(cfg *config.ServiceConfig, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	app := &App{
		Name:            cfg.Name,
		Cfg:             cfg,
		gracefulTimeout: defaultGracefulTimeout,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(cfg.Logging, cfg.Name)
		logger.SetGlobalLogger(app.Logger)
	}
	return app, nil
}

// Register adds components. They start in registration order and stop in
// reverse.
func (a *App) Register(components ...component.Component) {
	a.components = append(a.components, components...)
}

// Components returns the registered components.
func (a *App) Components() []component.Component {
	return a.components
}

// RunTask starts telemetry and components, runs task and shuts down. The
// task's context is canceled on SIGINT or SIGTERM. The task's error wins
// over a shutdown error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("Received signal, task canceled")
	}

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	status, results := component.HealthAll(ctx, a.components...)
	if status == component.StatusHealthy {
		return nil
	}
	var unhealthy []string
	for _, h := range results {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	return fmt.Errorf("unhealthy components: %v", unhealthy)
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"environment", a.Cfg.Environment,
	))

	if err := a.initTelemetry(ctx); err != nil {
		return err
	}

	if err := component.StartAll(ctx, a.components...); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	a.started = true

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields(err))
	}
	a.logSummary(time.Since(start))
	return nil
}

func (a *App) initTelemetry(ctx context.Context) error {
	if tc := a.Cfg.Tracing; tc != nil && tc.Endpoint != "" {
		tp, err := observability.InitTracer(ctx, *tc)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		a.shutdowns = append(a.shutdowns, tp.Shutdown)
	}
	if mc := a.Cfg.Metrics; mc != nil && mc.Endpoint != "" {
		mp, err := observability.InitMeter(ctx, *mc)
		if err != nil {
			return fmt.Errorf("init meter: %w", err)
		}
		a.shutdowns = append(a.shutdowns, mp.Shutdown)
	}
	return nil
}

func (a *App) logSummary(elapsed time.Duration) {
	for _, c := range a.components {
		d := component.Describe(c)
		a.Logger.Info("Component ready", logger.Fields(
			"name", d.Name,
			"type", d.Type,
			"details", d.Details,
		))
	}
	a.Logger.Info("Application started", logger.DurationFields(logger.Fields(
		"components", len(a.components),
	), elapsed))
}

// stop runs OnStop hooks, stops components in reverse order and flushes
// telemetry, all within the graceful timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields(err))
		errs = append(errs, err)
	}
	if a.started {
		if err := component.StopAll(ctx, a.components...); err != nil {
			a.Logger.Error("Shutdown completed with errors", logger.ErrorFields(err))
			errs = append(errs, err)
		}
		a.started = false
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	a.shutdowns = nil

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
