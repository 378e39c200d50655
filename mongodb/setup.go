package mongodb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalemi-dev/slimgoose/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo wraps a mongo.Client and keeps the models compiled on it.
//
// The driver reconnects on its own; MonitorConnection only tracks whether the
// server answers and notifies the OnDisconnect and OnReconnect listeners when
// that changes.
type Mongo struct {
	cfg       Config
	client    atomic.Pointer[mongo.Client]
	connected atomic.Bool

	observer observability.Observer
	logger   Logger

	listenersMu  sync.Mutex
	onDisconnect []func()
	onReconnect  []func()

	modelsMu sync.RWMutex
	models   map[string]*Model

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once
}

// NewMongo connects to the server described by cfg and pings it.
func NewMongo(ctx context.Context, cfg Config) (*Mongo, error) {
	client, err := connectToMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := &Mongo{
		cfg:            cfg,
		models:         make(map[string]*Model),
		shutdownSignal: make(chan struct{}),
	}
	m.client.Store(client)
	m.connected.Store(true)
	return m, nil
}

func connectToMongo(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrConnectionFailed)
	}

	details := cfg.ConnectionDetails
	maxPool := details.MaxPoolSize
	if maxPool == 0 {
		maxPool = defaultMaxPoolSize
	}
	connectTimeout := details.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = defaultConnectTimeout
	}
	selectionTimeout := details.ServerSelectionTimeout
	if selectionTimeout == 0 {
		selectionTimeout = defaultServerSelectionTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(details.MinPoolSize).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(selectionTimeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return client, nil
}

// WithObserver attaches an observer notified after every database operation.
// This method uses the builder pattern and returns the client for method chaining.
func (m *Mongo) WithObserver(observer observability.Observer) *Mongo {
	m.observer = observer
	return m
}

// WithLogger attaches a logger used for connection state changes.
// This method uses the builder pattern and returns the client for method chaining.
func (m *Mongo) WithLogger(logger Logger) *Mongo {
	m.logger = logger
	return m
}

// OnDisconnect registers fn to be called when a health check first fails.
func (m *Mongo) OnDisconnect(fn func()) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.onDisconnect = append(m.onDisconnect, fn)
}

// OnReconnect registers fn to be called when a health check succeeds after a failure.
func (m *Mongo) OnReconnect(fn func()) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.onReconnect = append(m.onReconnect, fn)
}

// MonitorConnection pings the server every HealthCheckInterval until ctx is done
// or GracefulShutdown is called.
func (m *Mongo) MonitorConnection(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.ConnectionDetails.healthCheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdownSignal:
			m.logInfo(ctx, "Stopping MonitorConnection loop due to shutdown signal", nil)
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkConnection(ctx)
		}
	}
}

// checkConnection runs one health check and fires the listeners on a state change.
func (m *Mongo) checkConnection(ctx context.Context) {
	err := m.healthCheck(ctx)
	switch {
	case err != nil && m.connected.CompareAndSwap(true, false):
		m.logWarn(ctx, "MongoDB connection lost", map[string]interface{}{"error": err.Error()})
		m.notify(&m.onDisconnect)
	case err == nil && m.connected.CompareAndSwap(false, true):
		m.logInfo(ctx, "MongoDB connection restored", nil)
		m.notify(&m.onReconnect)
	}
}

func (m *Mongo) notify(listeners *[]func()) {
	m.listenersMu.Lock()
	fns := append([]func(){}, (*listeners)...)
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (m *Mongo) healthCheck(ctx context.Context) error {
	client := m.Client()
	if client == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping failed during health check: %w", err)
	}
	return nil
}

// GracefulShutdown stops the monitor and disconnects the client. It is safe to
// call more than once.
func (m *Mongo) GracefulShutdown(ctx context.Context) error {
	m.closeShutdownOnce.Do(func() {
		close(m.shutdownSignal)
	})

	client := m.client.Swap(nil)
	if client == nil {
		return nil
	}
	m.connected.Store(false)
	if err := client.Disconnect(ctx); err != nil {
		return TranslateError(err)
	}
	return nil
}

func (m *Mongo) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (m *Mongo) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.WarnWithContext(ctx, msg, nil, fields)
	}
}

func (m *Mongo) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
