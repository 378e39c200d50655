package hooks

import (
	"context"
	"time"

	"github.com/aalemi-dev/slimgoose/serial"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Decorate wraps fn so that calling it first runs the chain registered for name.
//
// The chain runs through serial.Run with this registry's failure mode. In strict
// mode a hook error is returned unchanged and fn is not called. Otherwise fn is
// called with the arguments left by the chain. Errors from fn are returned
// unchanged. With no hooks registered the wrapper calls fn directly.
//
// Example:
//
//	reg := hooks.NewRegistry(hooks.Static)
//	_ = reg.Register("findByEmail", func(ctx context.Context, hc hooks.Context) (any, error) {
//	    email := hc.Data.Args[0].(string)
//	    hc.Data.SetNewArguments(strings.ToLower(email))
//	    return nil, nil
//	})
//	find, _ := reg.Decorate("findByEmail", findByEmail)
//	doc, err := find(ctx, userModel, "Ada@Example.com") // findByEmail sees "ada@example.com"
func (r *Registry) Decorate(name string, fn Method) (Method, error) {
	if name == "" {
		return nil, errEmptyName()
	}
	if fn == nil {
		return nil, errNilMethod(name)
	}

	return func(ctx context.Context, receiver any, args ...any) (any, error) {
		return r.invoke(ctx, name, fn, receiver, args)
	}, nil
}

func (r *Registry) invoke(ctx context.Context, name string, fn Method, receiver any, args []any) (any, error) {
	chain := r.Chain(name)
	if len(chain) == 0 {
		return fn(ctx, receiver, args...)
	}

	start := time.Now()
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "slimgoose.hooks."+string(r.kind)+"."+name,
			trace.WithAttributes(
				attribute.String("slimgoose.method", name),
				attribute.String("slimgoose.kind", string(r.kind)),
				attribute.Int("slimgoose.hooks", len(chain)),
			))
		defer span.End()
	}

	finalArgs, err := r.runChain(ctx, name, chain, receiver, args)
	if err != nil {
		r.finish(ctx, name, len(chain), "hooks", time.Since(start), err)
		return nil, err
	}

	out, err := fn(ctx, receiver, finalArgs...)
	r.finish(ctx, name, len(chain), "method", time.Since(start), err)
	return out, err
}

// runChain runs the hooks and returns the arguments the method should be called with.
func (r *Registry) runChain(ctx context.Context, name string, chain []Hook, receiver any, args []any) ([]any, error) {
	call := newInvocation(args)

	tasks := make([]serial.Task[Data], len(chain))
	for i, hook := range chain {
		tasks[i] = func(ctx context.Context, tc serial.TaskContext[Data]) (any, error) {
			return hook(ctx, Context{Results: tc.Results, Data: tc.Data})
		}
	}

	results, err := serial.RunWith(ctx, r.runner, tasks, serial.Options[Data]{
		Safe: r.safe,
		Name: string(r.kind) + "." + name,
		Data: Data{
			Key:      name,
			Kind:     r.kind,
			Receiver: receiver,
			call:     call,
		},
		Logger: r.logger,
	})
	if err != nil {
		return nil, err
	}

	current := call.current()
	if r.returnedArguments && len(results) > 0 {
		return argumentsFromResult(results[len(results)-1], current), nil
	}
	return current, nil
}

// argumentsFromResult applies the returned-arguments rule to the last hook's value.
func argumentsFromResult(last any, current []any) []any {
	switch v := last.(type) {
	case nil:
		return current
	case []any:
		if len(v) == 0 {
			return current
		}
		return append([]any(nil), v...)
	default:
		return []any{v}
	}
}

// finish reports a decorated call to the span in ctx and the observer.
func (r *Registry) finish(ctx context.Context, name string, hookCount int, stage string, duration time.Duration, err error) {
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	r.observeInvocation(name, hookCount, stage, duration, err)
}
