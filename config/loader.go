package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/coinbase-samples/core-go/logger"
)

// FileSystem abstracts the file operations the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment without
// overriding variables that are already set.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Options holds loader dependencies and explicit file overrides.
type Options struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix restricts environment binding to variables starting with
	// PREFIX_. The prefix is stripped before binding.
	EnvPrefix string
}

// Option configures Load.
type Option func(*Options)

// WithFileSystem sets the filesystem used to resolve files.
func WithFileSystem(fs FileSystem) Option {
	return func(o *Options) { o.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithEnvPrefix only binds environment variables carrying prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) { o.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// Files are the resolved config and env file paths. Either may be empty.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolve finds the config and .env files for service. Explicit paths in
// opts win over the search.
func Resolve(service string, opts Options) Files {
	fs := opts.FileSystem
	if fs == nil {
		fs = OSFileSystem{}
	}
	files := Files{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(fs, configCandidates(service))
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(fs, envCandidates(service))
	}
	return files
}

// Load reads configuration for service into cfg, which must be a pointer to
// a struct with mapstructure tags. A missing config file is not an error.
func Load(service string, cfg any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.FileSystem == nil {
		o.FileSystem = OSFileSystem{}
	}

	files := Resolve(service, o)
	log := logger.Get("config")
	v := viper.New()

	if files.ConfigFile != "" && o.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("failed to read config file", logger.ErrorFields(err, "file", files.ConfigFile))
		} else {
			log.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
		}
	}

	if files.EnvFile != "" && o.FileSystem.Exists(files.EnvFile) {
		if err := o.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", logger.ErrorFields(err, "file", files.EnvFile))
		}
	}

	bindEnv(v, os.Environ(), o.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", service, err)
	}
	return nil
}

func firstExisting(fs FileSystem, candidates []string) string {
	for _, path := range candidates {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

func configCandidates(service string) []string {
	short := shortName(service)
	paths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", service),
		fmt.Sprintf("./config/%s.yml", service),
	}
	if short != service {
		paths = append(paths,
			fmt.Sprintf("./cmd/%s/config.yml", short),
			fmt.Sprintf("./config/%s.yml", short),
		)
	}
	return append(paths, "./config/config.yml", "./config.yml")
}

func envCandidates(service string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/.env", service),
		fmt.Sprintf("./.env.%s", service),
		"./config/.env",
		"./.env",
	}
}

func shortName(service string) string {
	if idx := strings.LastIndex(service, "-"); idx != -1 {
		return service[idx+1:]
	}
	return service
}

// bindEnv sets every nested key variant of each KEY=value pair in environ.
func bindEnv(v *viper.Viper, environ []string, prefix string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found {
				continue
			}
			key = rest
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands an env var name into the dotted keys it may name.
//
//	HTTPCLIENT_BASE_URL -> httpclient_base_url, httpclient.base.url,
//	                       httpclient.base_url, httpclient_base.url
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := make(map[string]struct{}, 2*len(parts))
	out := make([]string, 0, 2*len(parts))
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		// dotted head, underscored tail
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
		// underscored head, dotted tail
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "."))
	}
	return out
}
