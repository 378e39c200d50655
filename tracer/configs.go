package tracer

// DefaultTracerName is the instrumentation name of the tracer returned by TracerClient.Tracer.
const DefaultTracerName = "github.com/aalemi-dev/slimgoose"

// Config controls the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName identifies the service in exported traces.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is the deployment environment, e.g. "staging" or "production".
	// It sets the "deployment.environment" and "environment" resource attributes.
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport sends spans to an OTLP HTTP collector. The endpoint is read
	// by the exporter from the standard OTEL_EXPORTER_OTLP_* variables.
	// When false, spans are created for context propagation but not exported.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// SetGlobal installs the provider and the W3C propagators as the otel globals.
	SetGlobal bool `yaml:"set_global" envconfig:"TRACER_SET_GLOBAL"`
}
