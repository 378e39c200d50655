package metrics

// DefaultAddress is where the /metrics endpoint listens when Config.Address is nil.
const DefaultAddress = ":9090"

// DefaultNamespace prefixes the names of the operation metrics.
const DefaultNamespace = "slimgoose"

// DefaultDurationBuckets are the histogram buckets, in seconds, of
// slimgoose_operation_duration_seconds. Database round trips and hook chains
// both sit well below a second in the common case.
var DefaultDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Config controls the Prometheus endpoint and the operation metrics.
type Config struct {
	// Address is the network address of the /metrics endpoint.
	//
	// Example values:
	//   - ":9090"          → all interfaces, port 9090
	//   - "127.0.0.1:9090" → localhost only
	//   - nil              → DefaultAddress
	//
	// An empty string disables the endpoint. Metrics are still recorded in
	// Registry and can be gathered by the application.
	//
	// Environment variable: METRICS_ADDRESS
	Address *string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// ServiceName is added as a constant "service" label to every metric.
	//
	// Environment variable: METRICS_SERVICE_NAME
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`

	// Namespace prefixes the operation metric names. Defaults to DefaultNamespace.
	//
	// Environment variable: METRICS_NAMESPACE
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// DisableRuntimeMetrics leaves out the Go runtime, process and build info collectors.
	//
	// Environment variable: METRICS_DISABLE_RUNTIME
	DisableRuntimeMetrics bool `yaml:"disable_runtime_metrics" envconfig:"METRICS_DISABLE_RUNTIME"`
}

// Ptr returns a pointer to s, for setting Config.Address inline.
//
//	cfg := metrics.Config{Address: metrics.Ptr("")} // no endpoint
func Ptr(s string) *string {
	return &s
}

func (c Config) address() string {
	if c.Address == nil {
		return DefaultAddress
	}
	return *c.Address
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return DefaultNamespace
	}
	return c.Namespace
}
