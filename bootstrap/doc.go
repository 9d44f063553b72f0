// Package bootstrap runs a program built on the client: it initializes
// logging and telemetry from config.ServiceConfig, starts the registered
// components, runs a task and shuts everything down.
//
//	app, err := bootstrap.NewApp(&cfg.ServiceConfig)
//	app.Register(httpclient.NewComponent("prime", cfg.HTTPClient))
//	err = app.RunTask(ctx, func(ctx context.Context) error { ... })
package bootstrap
