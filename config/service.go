package config

import (
	"fmt"
	"slices"

	"github.com/coinbase-samples/core-go/httpclient"
	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
)

// ServiceConfig is the configuration of a program built on the client.
// Programs embed it in their own config structs.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Portfolio string `yaml:"portfolio" mapstructure:"portfolio"`
//	}
type ServiceConfig struct {
	Name        string                      `yaml:"name" mapstructure:"name"`
	Environment string                      `yaml:"environment" mapstructure:"environment"`
	Logging     logger.Config               `yaml:"logging" mapstructure:"logging"`
	HTTPClient  httpclient.Config           `yaml:"httpclient" mapstructure:"httpclient"`
	Tracing     *observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics     *observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills unset fields of every section.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	c.HTTPClient.ApplyDefaults()
	if c.Tracing != nil && c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Metrics != nil && c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
}

// Validate checks every section and prefixes errors with the section name.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.HTTPClient.Validate(); err != nil {
		return fmt.Errorf("config.httpclient: %w", err)
	}
	return nil
}
