package tracer

import (
	"context"

	"github.com/aalemi-dev/slimgoose/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// FXModule provides *TracerClient and its trace.Tracer, which slimgoose.FXModule
// picks up. The provider is flushed and shut down on stop. A tracer.Config must
// be provided.
//
//	app := fx.New(
//	    tracer.FXModule,
//	    slimgoose.FXModule,
//	    fx.Provide(func(c slimgoose.Config) tracer.Config { return c.Tracer }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		func(cfg Config) (*TracerClient, error) { return NewClient(cfg) },
		func(c *TracerClient) trace.Tracer { return c.Tracer() },
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerLifeCycleParams groups the dependencies of RegisterTracerLifecycle.
type TracerLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *TracerClient
	Logger    logger.Logger `optional:"true"`
}

// RegisterTracerLifecycle shuts the provider down on stop.
func RegisterTracerLifecycle(params TracerLifeCycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("shutting down tracer", nil)
			}
			return params.Client.Shutdown(ctx)
		},
	})
}
