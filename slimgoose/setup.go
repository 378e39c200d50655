package slimgoose

import (
	"context"
	"errors"
	"sync"

	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/aalemi-dev/slimgoose/observability"
	"github.com/aalemi-dev/slimgoose/schema"
	"github.com/aalemi-dev/slimgoose/selector"
	"github.com/aalemi-dev/slimgoose/testdb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

// Slimgoose owns the default connection, any secondary connections, and the
// driver selection used to open them.
type Slimgoose struct {
	selector *selector.Selector

	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer
	hooks    HooksConfig

	mu                       sync.RWMutex
	conn                     *mongodb.Mongo
	connected                bool
	connections              []*mongodb.Mongo
	hasDefaultTestConnection bool

	stopMonitor context.CancelFunc
	monitorWg   sync.WaitGroup
}

// New returns a Slimgoose using sel for driver selection. A nil selector is
// replaced by a fresh one.
func New(sel *selector.Selector, opts ...Option) *Slimgoose {
	if sel == nil {
		sel = selector.New()
	}
	s := &Slimgoose{selector: sel}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// UseDriver selects the driver used by Connect and OpenConnection. It fails
// with selector.ErrFrozen once a schema has been built or a connection opened.
func (s *Slimgoose) UseDriver(d selector.Driver) error {
	return s.selector.Use(d)
}

// Driver returns the selected driver.
func (s *Slimgoose) Driver() selector.Driver {
	return s.selector.Driver()
}

// Selector returns the driver selector.
func (s *Slimgoose) Selector() *selector.Selector {
	return s.selector
}

// Schema starts a builder for a new schema and freezes the driver selection.
// Timestamps are on unless opts turn them off.
func (s *Slimgoose) Schema(def schema.Definition, opts ...schema.Option) *SchemaBuilder {
	s.selector.Freeze()
	return newSchemaBuilder(s, def, opts...)
}

// Connect opens the default connection with the selected driver and freezes
// the selection. The connection is watched: Connected turns false when the
// server stops answering and true again when it is back.
func (s *Slimgoose) Connect(ctx context.Context, cfg mongodb.Config) error {
	s.selector.Freeze()

	if s.Connection() != nil {
		return ErrAlreadyConnected
	}

	conn, err := s.open(ctx, cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		if err := conn.GracefulShutdown(ctx); err != nil {
			s.logWarn(ctx, "slimgoose failed to close surplus connection", err)
		}
		return ErrAlreadyConnected
	}
	defer s.mu.Unlock()

	conn.OnDisconnect(func() {
		s.setConnected(false)
		s.logWarn(context.Background(), "slimgoose default connection disconnected", nil)
	})
	conn.OnReconnect(func() {
		s.setConnected(true)
		s.logInfo(context.Background(), "slimgoose default connection restored")
	})

	monitorCtx, cancel := context.WithCancel(context.Background())
	s.stopMonitor = cancel
	s.monitorWg.Add(1)
	go func() {
		defer s.monitorWg.Done()
		conn.MonitorConnection(monitorCtx)
	}()

	s.conn = conn
	s.connected = true
	s.logInfo(ctx, "slimgoose default connection opened", map[string]interface{}{"database": cfg.Database})
	return nil
}

// Connected reports whether the default connection is open and answering.
func (s *Slimgoose) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Connection returns the default connection, or nil before Connect.
func (s *Slimgoose) Connection() *mongodb.Mongo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// OpenConnection opens an additional connection with the selected driver. It
// is closed by Close.
func (s *Slimgoose) OpenConnection(ctx context.Context, cfg mongodb.Config) (*mongodb.Mongo, error) {
	s.selector.Freeze()

	conn, err := s.open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.connections = append(s.connections, conn)
	s.mu.Unlock()
	return conn, nil
}

// Close shuts down the default connection and every connection opened with
// OpenConnection.
func (s *Slimgoose) Close(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	connections := s.connections
	stop := s.stopMonitor
	s.conn = nil
	s.connected = false
	s.connections = nil
	s.stopMonitor = nil
	s.hasDefaultTestConnection = false
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	var errs []error
	if conn != nil {
		if err := conn.GracefulShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		s.logWarn(ctx, "slimgoose default connection closed", nil)
	}
	for _, c := range connections {
		if err := c.GracefulShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.monitorWg.Wait()
	return errors.Join(errs...)
}

// ConnectDefaultForTest opens the default connection to a server created by
// prov, using database as the database name.
func (s *Slimgoose) ConnectDefaultForTest(ctx context.Context, prov testdb.Provisioner, database string) error {
	uri, err := prov.CreateServer(ctx)
	if err != nil {
		return err
	}
	if err := s.Connect(ctx, mongodb.Config{URI: uri, Database: database}); err != nil {
		return err
	}

	s.mu.Lock()
	s.hasDefaultTestConnection = true
	s.mu.Unlock()
	return nil
}

// ResetDefaultForTest drops the database of the default test connection.
func (s *Slimgoose) ResetDefaultForTest(ctx context.Context) error {
	s.mu.RLock()
	conn := s.conn
	ok := s.hasDefaultTestConnection
	s.mu.RUnlock()

	if !ok || conn == nil {
		return ErrNoTestConnection
	}
	return testdb.ResetDatabase(ctx, conn)
}

// NewObjectID returns a new document id.
func (s *Slimgoose) NewObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func (s *Slimgoose) open(ctx context.Context, cfg mongodb.Config) (*mongodb.Mongo, error) {
	conn, err := s.selector.Driver().Connect(ctx, cfg)
	if err != nil {
		s.logError(ctx, "slimgoose failed to open connection", err)
		return nil, err
	}
	if s.logger != nil {
		conn.WithLogger(s.logger)
	}
	if s.observer != nil {
		conn.WithObserver(s.observer)
	}
	return conn, nil
}

func (s *Slimgoose) setConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.connected = v
	}
}

func (s *Slimgoose) logInfo(ctx context.Context, msg string, fields ...map[string]interface{}) {
	if s.logger != nil {
		s.logger.InfoWithContext(ctx, msg, nil, fields...)
	}
}

func (s *Slimgoose) logWarn(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	if s.logger != nil {
		s.logger.WarnWithContext(ctx, msg, err, fields...)
	}
}

func (s *Slimgoose) logError(ctx context.Context, msg string, err error) {
	if s.logger != nil {
		s.logger.ErrorWithContext(ctx, msg, err)
	}
}
