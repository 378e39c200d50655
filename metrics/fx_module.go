package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/aalemi-dev/slimgoose/logger"
	"github.com/aalemi-dev/slimgoose/observability"
	"go.uber.org/fx"
)

// FXModule provides *Metrics and its Observer as observability.Observer, which
// the mongodb and slimgoose modules pick up. The /metrics server runs for the
// lifetime of the application.
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    slimgoose.FXModule,
//	    fx.Provide(func(c slimgoose.Config) metrics.Config { return c.Metrics }),
//	)
//
// A metrics.Config must be provided.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		func(m *Metrics) observability.Observer { return m.Observer() },
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// MetricsLifeCycleParams groups the dependencies of RegisterMetricsLifecycle.
type MetricsLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    logger.Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the /metrics server in the background on
// start and shuts it down on stop. Nothing is started when the endpoint is
// disabled.
func RegisterMetricsLifecycle(params MetricsLifeCycleParams) {
	m, log := params.Metrics, params.Logger
	if m.Server == nil {
		return
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if log != nil {
					log.Info("Starting metrics server", nil, map[string]interface{}{
						"address": m.Server.Addr,
					})
				}
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
					log.Error("Error starting metrics server", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if log != nil {
				log.Info("Shutting down metrics server", nil)
			}
			return m.Server.Shutdown(ctx)
		},
	})
}
