package mongodb

import (
	"time"

	"github.com/aalemi-dev/slimgoose/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
//
// resource is the collection name; it falls back to the database name.
func (m *Mongo) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if m == nil || m.observer == nil {
		return
	}

	if resource == "" {
		resource = m.cfg.database()
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "mongodb",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
