package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	// DefaultDatabase is used when Config.Database is empty.
	DefaultDatabase = "test"

	defaultMaxPoolSize            = 100
	defaultConnectTimeout         = 10 * time.Second
	defaultServerSelectionTimeout = 10 * time.Second
	defaultHealthCheckInterval    = 10 * time.Second
	healthCheckTimeout            = 5 * time.Second
)

// Config represents the configuration of a MongoDB connection.
type Config struct {
	// URI is the connection string, e.g. mongodb://localhost:27017
	URI string `yaml:"uri" envconfig:"URI"`

	// Database is the database models are stored in. Defaults to DefaultDatabase.
	Database string `yaml:"database" envconfig:"DATABASE"`

	// AppName is reported to the server in the connection handshake.
	AppName string `yaml:"app_name" envconfig:"APP_NAME"`

	// ConnectionDetails controls pooling and timeouts.
	ConnectionDetails ConnectionDetails `yaml:"connection_details" envconfig:"CONNECTION"`
}

// ConnectionDetails holds pool and timeout settings. Zero values fall back to
// the package defaults.
type ConnectionDetails struct {
	// MaxPoolSize is the maximum number of connections kept per server.
	MaxPoolSize uint64 `yaml:"max_pool_size" envconfig:"MAX_POOL_SIZE"`

	// MinPoolSize is the number of idle connections kept open per server.
	MinPoolSize uint64 `yaml:"min_pool_size" envconfig:"MIN_POOL_SIZE"`

	// ConnectTimeout bounds the establishment of a single connection.
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`

	// ServerSelectionTimeout bounds how long an operation waits for a usable server.
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout" envconfig:"SERVER_SELECTION_TIMEOUT"`

	// HealthCheckInterval is the period of the ping issued by MonitorConnection.
	HealthCheckInterval time.Duration `yaml:"health_check_interval" envconfig:"HEALTH_CHECK_INTERVAL"`
}

func (c Config) database() string {
	if c.Database == "" {
		return DefaultDatabase
	}
	return c.Database
}

func (d ConnectionDetails) healthCheckInterval() time.Duration {
	if d.HealthCheckInterval <= 0 {
		return defaultHealthCheckInterval
	}
	return d.HealthCheckInterval
}

// FindOptions narrows the result of Model.Find.
type FindOptions struct {
	Sort       bson.D
	Limit      int64
	Skip       int64
	Projection bson.M
}

// UpdateResult reports the outcome of Model.UpdateOne.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Logger is an interface that matches the logger.Logger interface.
// It provides context-aware structured logging with optional error and field parameters.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
