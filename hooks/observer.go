package hooks

import (
	"time"

	"github.com/aalemi-dev/slimgoose/observability"
)

// observeInvocation notifies the observer about a decorated call. stage is "hooks"
// when the chain failed and "method" once the method itself ran.
func (r *Registry) observeInvocation(name string, hookCount int, stage string, duration time.Duration, err error) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component:   "hooks",
		Operation:   "invoke",
		Resource:    name,
		SubResource: string(r.kind),
		Duration:    duration,
		Error:       err,
		Size:        int64(hookCount),
		Metadata:    map[string]interface{}{"stage": stage},
	})
}
