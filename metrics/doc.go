// Package metrics exposes slimgoose operations to Prometheus.
//
// # Overview
//
// Every slimgoose package that does measurable work accepts an
// observability.Observer: the serial runner, the pre-hook registries, the
// MongoDB model layer and the test database provisioner. Metrics turns those
// events into three metrics on its own registry:
//
//	slimgoose_operations_total{service, component, operation, status}
//	slimgoose_operation_duration_seconds{service, component, operation}
//	slimgoose_operation_items_total{service, component, operation}
//
// status is "ok" or "error". The Go runtime, process and build info collectors
// are registered on the same registry unless Config.DisableRuntimeMetrics is set.
//
// # Direct Usage
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "billing"})
//	go m.Server.ListenAndServe()
//	defer m.Server.Shutdown(context.Background())
//
//	sg := slimgoose.New(nil, slimgoose.WithObserver(m.Observer()))
//
// Set Config.Address to metrics.Ptr("") to skip the server and mount
// m.Handler() on an existing one instead.
//
// # FX Usage
//
// FXModule provides *Metrics and observability.Observer, and manages the server:
//
//	app := fx.New(
//	    metrics.FXModule,
//	    fx.Supply(metrics.Config{ServiceName: "billing"}),
//	)
//
// # Configuration
//
// Config is read from the environment with the METRICS_ prefix by
// slimgoose.LoadConfigFromEnv (SLIMGOOSE_METRICS_ADDRESS and so on).
package metrics
