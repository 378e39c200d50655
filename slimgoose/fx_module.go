package slimgoose

import (
	"context"

	"github.com/aalemi-dev/slimgoose/logger"
	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/aalemi-dev/slimgoose/selector"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// FXModule provides a *selector.Selector and a *Slimgoose. When Config.Mongo.URI
// is set the default connection is opened on start; every connection is closed
// on stop.
//
//	app := fx.New(
//	    logger.FXModule,
//	    slimgoose.FXModule,
//	    fx.Provide(slimgoose.LoadConfigFromEnv, func(c slimgoose.Config) logger.Config { return c.Logger }),
//	    fx.Invoke(func(sg *slimgoose.Slimgoose) { /* build schemas */ }),
//	)
var FXModule = fx.Module("slimgoose",
	fx.Provide(
		selector.New,
		NewSlimgooseWithDI,
	),
	fx.Invoke(RegisterSlimgooseLifecycle),
)

// SlimgooseParams groups the dependencies of NewSlimgooseWithDI.
type SlimgooseParams struct {
	fx.In

	Selector *selector.Selector
	Config   Config                 `optional:"true"`
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   trace.Tracer           `optional:"true"`
}

// NewSlimgooseWithDI builds a Slimgoose from injected dependencies.
func NewSlimgooseWithDI(params SlimgooseParams) *Slimgoose {
	opts := []Option{WithHooks(params.Config.Hooks)}
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if params.Observer != nil {
		opts = append(opts, WithObserver(params.Observer))
	}
	if params.Tracer != nil {
		opts = append(opts, WithTracer(params.Tracer))
	}
	return New(params.Selector, opts...)
}

// SlimgooseLifeCycleParams groups the dependencies of RegisterSlimgooseLifecycle.
type SlimgooseLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Slimgoose *Slimgoose
	Config    Config `optional:"true"`
}

// RegisterSlimgooseLifecycle opens the default connection on start, if one is
// configured, and closes every connection on stop.
func RegisterSlimgooseLifecycle(params SlimgooseLifeCycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Config.Mongo.URI == "" {
				return nil
			}
			return params.Slimgoose.Connect(ctx, params.Config.Mongo)
		},
		OnStop: func(ctx context.Context) error {
			return params.Slimgoose.Close(ctx)
		},
	})
}
