package logger

// Log level constants accepted by Config.Level.
const (
	// Debug logs everything, including per-task details of serial runs.
	Debug = "debug"

	// Info logs lifecycle events such as connections being opened and closed.
	Info = "info"

	// Warning logs swallowed hook failures and lost connections.
	Warning = "warning"

	// Error logs only failures that could not be returned to a caller.
	Error = "error"
)

// DefaultServiceName is used for the "service" field when Config.ServiceName is empty.
const DefaultServiceName = "slimgoose"

// Config controls the logger.
type Config struct {
	// Level is the minimum level written. One of Debug, Info, Warning, Error.
	// Unknown values fall back to Info.
	Level string `yaml:"level" envconfig:"LOGGER_LEVEL"`

	// EnableTracing adds "trace_id" and "span_id" to entries logged through the
	// *WithContext methods when the context carries a recording span.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName populates the "service" field of every entry.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`

	// CallerSkip is the number of stack frames skipped when reporting the caller.
	// Use 2 when the logger is wrapped once more by application code.
	// Zero or negative means 1.
	CallerSkip int `yaml:"caller_skip" envconfig:"LOGGER_CALLER_SKIP"`
}
