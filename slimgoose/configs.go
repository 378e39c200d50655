package slimgoose

import (
	"context"
	"fmt"
	"os"

	"github.com/aalemi-dev/slimgoose/logger"
	"github.com/aalemi-dev/slimgoose/metrics"
	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/aalemi-dev/slimgoose/tracer"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadConfigFromEnv.
const EnvPrefix = "SLIMGOOSE"

// Config is the complete configuration of a slimgoose application.
type Config struct {
	// Mongo is the default connection. It is opened on start by FXModule when URI is set.
	// Read from SLIMGOOSE_MONGO_*.
	Mongo mongodb.Config `yaml:"mongo" ignored:"true"`

	// Logger is read from SLIMGOOSE_LOGGER_*.
	Logger logger.Config `yaml:"logger" ignored:"true"`

	// Metrics is read from SLIMGOOSE_METRICS_*.
	Metrics metrics.Config `yaml:"metrics" ignored:"true"`

	// Tracer is read from SLIMGOOSE_TRACER_*.
	Tracer tracer.Config `yaml:"tracer" ignored:"true"`

	// Hooks is read from SLIMGOOSE_HOOKS_*.
	Hooks HooksConfig `yaml:"hooks" envconfig:"HOOKS"`
}

// HooksConfig controls the pre-hook registries of every schema builder.
type HooksConfig struct {
	// Safe makes hook chains fail-soft and skips invalid registrations with a warning.
	Safe bool `yaml:"safe" envconfig:"SAFE"`

	// ReturnedArguments lets the value returned by the last hook replace the method arguments.
	ReturnedArguments bool `yaml:"returned_arguments" envconfig:"RETURNED_ARGUMENTS"`
}

// LoadConfigFromEnv reads a Config from the environment.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := processEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFromFile reads a YAML Config from path. Environment variables
// override the values of the file.
//
//	mongo:
//	  uri: mongodb://localhost:27017
//	  database: shop
//	  connection_details:
//	    server_selection_timeout: 5s
//	hooks:
//	  safe: true
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read slimgoose config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse slimgoose config %s: %w", path, err)
	}
	if err := processEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// processEnv runs one envconfig pass per section so every package keeps its own tags.
func processEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to load slimgoose config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix+"_MONGO", &cfg.Mongo); err != nil {
		return fmt.Errorf("failed to load mongo config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.Logger); err != nil {
		return fmt.Errorf("failed to load logger config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.Metrics); err != nil {
		return fmt.Errorf("failed to load metrics config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.Tracer); err != nil {
		return fmt.Errorf("failed to load tracer config: %w", err)
	}
	return nil
}

// Logger is the subset of logger.Logger used by slimgoose. It also satisfies
// the logger interfaces of packages hooks, mongodb and testdb.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Option configures a Slimgoose.
type Option func(*Slimgoose)

// WithLogger attaches a logger to slimgoose, its connections and its hook registries.
func WithLogger(l Logger) Option {
	return func(s *Slimgoose) { s.logger = l }
}

// WithObserver attaches an observer to connections and hook registries.
func WithObserver(o observability.Observer) Option {
	return func(s *Slimgoose) { s.observer = o }
}

// WithTracer starts a span around every decorated method call that has hooks.
func WithTracer(t trace.Tracer) Option {
	return func(s *Slimgoose) { s.tracer = t }
}

// WithHooks sets the failure mode and argument rule of the hook registries.
func WithHooks(cfg HooksConfig) Option {
	return func(s *Slimgoose) { s.hooks = cfg }
}
