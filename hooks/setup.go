package hooks

import (
	"sort"
	"sync"

	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/aalemi-dev/slimgoose/serial"
	"go.opentelemetry.io/otel/trace"
)

// Registry maps method names to ordered chains of pre hooks, for one Kind.
//
// Chains are read when a decorated method is called, not when it is decorated,
// so hooks registered after decoration still run. Registration is expected to
// happen during setup; the registry is nevertheless safe for concurrent use.
type Registry struct {
	kind Kind

	mu     sync.RWMutex
	chains map[string][]Hook

	safe              bool
	returnedArguments bool

	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer
	runner   *serial.Runner
}

// NewRegistry returns an empty registry for the given kind.
func NewRegistry(kind Kind) *Registry {
	return &Registry{
		kind:   kind,
		chains: make(map[string][]Hook),
		runner: &serial.Runner{},
	}
}

// WithSafe makes chains fail-soft: a failing hook contributes nil and the chain
// continues. By default the first failing hook aborts the call.
func (r *Registry) WithSafe(safe bool) *Registry {
	r.safe = safe
	return r
}

// WithReturnedArguments turns on the rule where the value returned by the last
// hook of a chain becomes the method's arguments: a non-empty []any is used as is,
// any other non-nil value becomes the single argument, and nil or an empty slice
// keeps the current arguments. Off by default; use SetNewArguments instead.
func (r *Registry) WithReturnedArguments(enabled bool) *Registry {
	r.returnedArguments = enabled
	return r
}

// WithLogger attaches a logger for swallowed hook failures.
func (r *Registry) WithLogger(logger Logger) *Registry {
	r.logger = logger
	return r
}

// WithObserver attaches an observer notified once per decorated call that has hooks.
func (r *Registry) WithObserver(observer observability.Observer) *Registry {
	r.observer = observer
	r.runner = (&serial.Runner{}).WithObserver(observer)
	return r
}

// WithTracer starts a span around every decorated call that has hooks.
func (r *Registry) WithTracer(tracer trace.Tracer) *Registry {
	r.tracer = tracer
	return r
}

// Kind returns the kind this registry intercepts.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Register appends hook to the chain for name, creating the chain if needed.
func (r *Registry) Register(name string, hook Hook) error {
	if name == "" {
		return errEmptyName()
	}
	if hook == nil {
		return errNilHook(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[name] = append(r.chains[name], hook)
	return nil
}

// Chain returns a snapshot of the hooks registered for name, in registration order.
// It is empty, never nil, for unknown names.
func (r *Registry) Chain(name string) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Hook{}, r.chains[name]...)
}

// Len returns the number of hooks registered for name.
func (r *Registry) Len(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains[name])
}

// Names returns the method names that have at least one hook, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.chains))
	for name, chain := range r.chains {
		if len(chain) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a registry with the same settings and a copy of every chain.
// Hooks registered on either one afterwards are not seen by the other.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make(map[string][]Hook, len(r.chains))
	for name, chain := range r.chains {
		chains[name] = append([]Hook(nil), chain...)
	}

	return &Registry{
		kind:              r.kind,
		chains:            chains,
		safe:              r.safe,
		returnedArguments: r.returnedArguments,
		logger:            r.logger,
		observer:          r.observer,
		tracer:            r.tracer,
		runner:            r.runner,
	}
}
