package mongodb

import (
	"context"

	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/aalemi-dev/slimgoose/serial"
)

// runMiddleware runs chain in order through the serial runner. Every middleware
// shares hc; the first error aborts the chain and is returned unchanged.
func (m *Model) runMiddleware(ctx context.Context, stage string, chain []schema.Middleware, hc *schema.HookContext) error {
	if len(chain) == 0 {
		return nil
	}

	tasks := make([]serial.Task[struct{}], len(chain))
	for i, mw := range chain {
		tasks[i] = func(ctx context.Context, _ serial.TaskContext[struct{}]) (any, error) {
			return nil, mw(ctx, hc)
		}
	}

	_, err := serial.RunWith(ctx, m.runner, tasks, serial.Options[struct{}]{
		Name: m.name + "." + stage + "." + string(hc.Operation),
	})
	return err
}

func (m *Model) pre(ctx context.Context, hc *schema.HookContext) error {
	return m.runMiddleware(ctx, "pre", m.schema.PreChain(hc.Operation), hc)
}

func (m *Model) post(ctx context.Context, hc *schema.HookContext) error {
	return m.runMiddleware(ctx, "post", m.schema.PostChain(hc.Operation), hc)
}
