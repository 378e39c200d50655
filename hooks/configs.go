package hooks

import (
	"context"
	"sync"

	"github.com/aalemi-dev/slimgoose/serial"
)

// Kind tells instance methods and static methods apart. Each kind has its own registry.
type Kind string

const (
	// Instance hooks run before methods called on a document.
	Instance Kind = "instance"

	// Static hooks run before methods called on a model.
	Static Kind = "static"
)

// Method is the shape of every instance and static method. The receiver is the
// document (instance methods) or the model (static methods) the call was made on.
type Method func(ctx context.Context, receiver any, args ...any) (any, error)

// Hook runs before the method it is registered for. Its return value is appended
// to the results seen by later hooks.
type Hook func(ctx context.Context, hc Context) (any, error)

// Context is what a hook receives.
type Context struct {
	// Results holds the values returned by the earlier hooks of this call, in order.
	Results []any

	// Data describes the call being intercepted.
	Data Data
}

// Data describes one intercepted call. Every hook gets its own copy.
type Data struct {
	// Key is the method name.
	Key string

	// Kind is the kind of the registry that intercepted the call.
	Kind Kind

	// Args holds the arguments as they currently stand: the caller's, or the last
	// ones set through SetNewArguments by an earlier hook.
	Args []any

	// Receiver is the document or model the method was called on.
	Receiver any

	call *invocation
}

// SetNewArguments replaces the arguments seen by the following hooks and by the
// method itself. Hooks that already ran are not affected.
func (d Data) SetNewArguments(args ...any) {
	if d.call == nil {
		return
	}
	d.call.set(args)
}

// Clone returns a copy holding a deep copy of the current arguments of the call.
// The receiver is shared.
func (d Data) Clone() Data {
	c := d
	if d.call != nil {
		c.Args = d.call.current()
	} else {
		c.Args = cloneArgs(d.Args)
	}
	return c
}

// invocation holds the argument list of one call while its chain runs.
type invocation struct {
	mu   sync.Mutex
	args []any
}

func newInvocation(args []any) *invocation {
	return &invocation{args: cloneArgs(args)}
}

func (i *invocation) set(args []any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.args = cloneArgs(args)
}

func (i *invocation) current() []any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return cloneArgs(i.args)
}

func cloneArgs(args []any) []any {
	if args == nil {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = serial.CloneValue(arg)
	}
	return out
}

// Logger is the subset of logger.Logger used here.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
