// Package config loads client configuration from YAML files, .env files
// and environment variables.
//
// Files are resolved in standard locations relative to the working
// directory (./config.yml, ./config/<service>.yml, ./cmd/<service>/config.yml)
// and environment variables override file values. A variable such as
// HTTPCLIENT_RETRY_MAX_RETRIES is bound to every nested key it could name
// (httpclient.retry.max_retries, httpclient.retry_max_retries, ...).
//
//	var cfg config.ServiceConfig
//	if err := config.Load("orders-sync", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
