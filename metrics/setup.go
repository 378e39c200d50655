package metrics

import (
	"net/http"

	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a Prometheus registry, the operation metrics recorded from
// observer events, and the HTTP server exposing them.
type Metrics struct {
	// Server serves /metrics. It is nil when Config.Address is empty.
	Server *http.Server

	// Registry holds the operation metrics and, unless disabled, the runtime collectors.
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	items      *prometheus.CounterVec
}

// NewMetrics creates the registry and registers the operation metrics:
//
//   - <namespace>_operations_total{component, operation, status}
//   - <namespace>_operation_duration_seconds{component, operation}
//   - <namespace>_operation_items_total{component, operation}
//
// Every metric carries the constant label service=cfg.ServiceName.
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "billing"})
//	sg := slimgoose.New(nil, slimgoose.WithObserver(m.Observer()))
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if !cfg.DisableRuntimeMetrics {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	ns := cfg.namespace()
	m := &Metrics{
		Registry: registry,
		operations: createCounterVec(ns, "operations_total",
			"Completed operations by component, operation and status.",
			[]string{"component", "operation", "status"}),
		durations: createHistogramVec(ns, "operation_duration_seconds",
			"Duration of completed operations in seconds.",
			[]string{"component", "operation"}, DefaultDurationBuckets),
		items: createCounterVec(ns, "operation_items_total",
			"Tasks run, documents returned or documents modified by completed operations.",
			[]string{"component", "operation"}),
	}
	registerer.MustRegister(m.operations, m.durations, m.items)

	if addr := cfg.address(); addr != "" {
		m.Server = &http.Server{
			Addr:    addr,
			Handler: m.Handler(),
		}
	}
	return m
}

// Handler returns the /metrics handler for Registry, for applications that
// mount it on their own server.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	return mux
}

// Observer returns an observability.Observer recording every event into the
// operation metrics.
func (m *Metrics) Observer() observability.Observer {
	return &operationObserver{metrics: m}
}
