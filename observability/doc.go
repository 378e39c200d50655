// Package observability defines the single Observer interface shared by the
// slimgoose packages.
//
// # Overview
//
// Each package that does interesting work (the serial runner, the pre-hook
// registry, the MongoDB model layer, the test database provisioner) accepts an
// optional Observer and emits one OperationContext per completed operation.
// Applications plug in metrics, tracing or logging without the packages depending
// on any of those concerns.
//
// # Usage
//
//	registry := hooks.NewRegistry(hooks.Instance, hooks.WithObserver(
//	    observability.ObserverFunc(func(op observability.OperationContext) {
//	        log.Printf("%s.%s %s took %s", op.Component, op.Operation, op.Resource, op.Duration)
//	    }),
//	))
//
// The metrics package ships a Prometheus backed implementation:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "billing"})
//	conn = conn.WithObserver(m.Observer())
//
// # Thread Safety
//
// Observer implementations must be safe for concurrent use.
package observability
