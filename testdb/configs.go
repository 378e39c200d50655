package testdb

import (
	"context"
	"time"
)

const (
	// DefaultImage is the MongoDB image started by ContainerProvisioner.
	DefaultImage = "mongo:7"

	// EnvURI names the variable FromEnv reads an existing server URI from.
	EnvURI = "SLIMGOOSE_TEST_MONGO_URI"

	defaultStartupTimeout = 60 * time.Second
	mongoPort             = "27017/tcp"
)

// Config controls the containers started by ContainerProvisioner.
type Config struct {
	// Image is the container image. Defaults to DefaultImage.
	Image string `yaml:"image" envconfig:"IMAGE"`

	// StartupTimeout bounds how long to wait for the server to accept connections.
	StartupTimeout time.Duration `yaml:"startup_timeout" envconfig:"STARTUP_TIMEOUT"`
}

// Logger is the subset of logger.Logger used here.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
