package metrics

import (
	"github.com/aalemi-dev/slimgoose/observability"
)

type operationObserver struct {
	metrics *Metrics
}

// ObserveOperation records one completed operation.
func (o *operationObserver) ObserveOperation(op observability.OperationContext) {
	o.metrics.operations.WithLabelValues(op.Component, op.Operation, status(op.Error)).Inc()
	o.metrics.durations.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())
	if op.Size > 0 {
		o.metrics.items.WithLabelValues(op.Component, op.Operation).Add(float64(op.Size))
	}
}
