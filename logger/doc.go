// Package logger provides structured logging built on zerolog.
//
// Loggers are created from a Config and scoped to a component. The HTTP
// client uses a component logger named "httpclient" unless one is supplied.
//
// # Configuration
//
//	logger:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("httpclient")
//	log.Debug("attempt", logger.Fields(logger.FieldMethod, "GET", logger.FieldAttempt, 0))
package logger
