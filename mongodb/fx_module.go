package mongodb

import (
	"context"
	"sync"

	"github.com/aalemi-dev/slimgoose/observability"
	"go.uber.org/fx"
)

// FXModule is an fx module that provides the MongoDB connection.
// It registers the constructor for dependency injection and sets up lifecycle
// hooks that start connection monitoring and disconnect on stop.
var FXModule = fx.Module("mongodb",
	fx.Provide(NewMongoClientWithDI),
	fx.Invoke(RegisterMongoLifecycle),
)

// MongoParams groups the dependencies needed to create a Mongo connection via dependency injection.
type MongoParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewMongoClientWithDI connects using the injected Config and attaches the
// optional logger and observer. The connection is bounded by the start timeout
// of the application.
func NewMongoClientWithDI(params MongoParams) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout+defaultServerSelectionTimeout)
	defer cancel()

	client, err := NewMongo(ctx, params.Config)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		client.logger = params.Logger
	}
	if params.Observer != nil {
		client.observer = params.Observer
	}
	return client, nil
}

// MongoLifeCycleParams groups the dependencies needed for lifecycle management.
type MongoLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Mongo     *Mongo
}

// RegisterMongoLifecycle starts MonitorConnection on application start and
// shuts the connection down on stop, waiting for the monitor to return.
func RegisterMongoLifecycle(params MongoLifeCycleParams) {
	wg := &sync.WaitGroup{}
	monitorCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Mongo.MonitorConnection(monitorCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			err := params.Mongo.GracefulShutdown(ctx)
			wg.Wait()
			return err
		},
	})
}
