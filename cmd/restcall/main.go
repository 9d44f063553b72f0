// Command restcall sends one signed REST call and prints the response body.
//
//	restcall [flags] METHOD PATH [JSON_BODY]
//
// Configuration is read from ./cmd/restcall/config.yml, ./config/restcall.yml
// or ./config.yml, then overridden by RESTCALL_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/coinbase-samples/core-go/bootstrap"
	"github.com/coinbase-samples/core-go/config"
	"github.com/coinbase-samples/core-go/credentials"
	"github.com/coinbase-samples/core-go/httpclient"
	"github.com/coinbase-samples/core-go/logger"
	"github.com/coinbase-samples/core-go/observability"
	"github.com/coinbase-samples/core-go/util"
	"github.com/coinbase-samples/core-go/version"
)

const serviceName = "restcall"

// AppConfig is the restcall configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Auth                 AuthConfig `yaml:"auth" mapstructure:"auth"`
}

// AuthConfig selects how requests are signed.
type AuthConfig struct {
	// Type is one of "", "jwt", "hmac" or "bearer".
	Type           string `yaml:"type" mapstructure:"type"`
	KeyName        string `yaml:"key_name" mapstructure:"key_name"`
	PrivateKeyFile string `yaml:"private_key_file" mapstructure:"private_key_file"`
	Key            string `yaml:"key" mapstructure:"key"`
	Secret         string `yaml:"secret" mapstructure:"secret"`
	Passphrase     string `yaml:"passphrase" mapstructure:"passphrase"`
	Base64Secret   bool   `yaml:"base64_secret" mapstructure:"base64_secret"`
	Token          string `yaml:"token" mapstructure:"token"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "restcall:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = pflag.StringP("config", "c", "", "config file")
		envFile     = pflag.String("env-file", "", ".env file")
		query       = pflag.StringArrayP("query", "q", nil, "query parameter key=value (repeatable)")
		retries     = pflag.Int("retries", 0, "retry this call up to n times")
		showVersion = pflag.Bool("version", false, "print version and exit")
	)
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.GetShortVersion())
		return nil
	}

	args := pflag.Args()
	if len(args) < 2 {
		return errors.New("usage: restcall [flags] METHOD PATH [JSON_BODY]")
	}

	var cfg AppConfig
	opts := []config.Option{config.WithEnvPrefix(serviceName)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return err
	}
	cfg.Name = util.Coalesce(cfg.Name, serviceName)

	app, err := bootstrap.NewApp(&cfg.ServiceConfig)
	if err != nil {
		return err
	}

	clientOpts, err := clientOptions(cfg)
	if err != nil {
		return err
	}
	if cfg.Auth.Type != "" {
		app.Logger.Debug("request signing enabled", logger.Fields(
			"type", cfg.Auth.Type,
			"key", util.MaskSecret(util.Coalesce(cfg.Auth.KeyName, cfg.Auth.Key), 8),
		))
	}
	api := httpclient.NewComponent("api", cfg.HTTPClient, clientOpts...)
	app.Register(api)

	req, err := buildRequest(args, *query, *retries)
	if err != nil {
		return err
	}

	return app.RunTask(context.Background(), func(ctx context.Context) error {
		resp, err := api.Client().Do(ctx, req)
		if err != nil {
			return err
		}
		app.Logger.Debug("call complete", logger.Fields(
			logger.FieldRequestID, resp.RequestID,
			logger.FieldStatus, resp.StatusCode,
		))
		_, err = os.Stdout.Write(append(resp.Body, '\n'))
		return err
	})
}

func clientOptions(cfg AppConfig) ([]httpclient.Option, error) {
	var opts []httpclient.Option

	creds, err := newCredentials(cfg.Auth)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		opts = append(opts, httpclient.WithCredentials(creds))
	}

	if cfg.Metrics != nil && cfg.Metrics.Endpoint != "" {
		m, err := observability.NewClientMetrics(observability.Meter(serviceName))
		if err != nil {
			return nil, fmt.Errorf("client metrics: %w", err)
		}
		opts = append(opts, httpclient.WithMetrics(m))
	}
	return opts, nil
}

func newCredentials(a AuthConfig) (httpclient.Credentials, error) {
	switch strings.ToLower(a.Type) {
	case "":
		return nil, nil
	case "jwt":
		pem, err := os.ReadFile(a.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		return credentials.NewJWT(a.KeyName, pem)
	case "hmac":
		h, err := credentials.NewHMAC(a.Key, a.Secret, a.Passphrase)
		if err != nil {
			return nil, err
		}
		h.Base64Secret = a.Base64Secret
		return h, nil
	case "bearer":
		return httpclient.BearerToken(a.Token), nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", a.Type)
	}
}

func buildRequest(args, query []string, retries int) (httpclient.Request, error) {
	req := httpclient.Request{
		Method: httpclient.Method(strings.ToUpper(args[0])),
		Path:   args[1],
	}
	for _, kv := range query {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return req, fmt.Errorf("invalid query parameter %q", kv)
		}
		req.Query = req.Query.Add(k, v)
	}
	if len(args) > 2 {
		var body any
		if err := json.Unmarshal([]byte(args[2]), &body); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		req.Body = body
	}

	if retries > 0 {
		req.Options = &httpclient.CallOptions{Retry: httpclient.RetryOptions{Retries: retries}}
	}
	return req, nil
}
