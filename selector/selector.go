// Package selector holds the choice of database driver used by slimgoose and
// freezes it once slimgoose starts using it.
//
// A Selector starts Configurable: Use swaps the driver freely. Freeze moves it
// to Frozen, after which Use fails with ErrFrozen. The transition is one way.
// A Selector is an ordinary value; create one per application and pass it
// where it is needed (slimgoose.FXModule provides one).
package selector

import (
	"context"
	"errors"
	"sync"

	"github.com/aalemi-dev/slimgoose/mongodb"
)

// ErrFrozen is returned by Use once the selector is frozen.
var ErrFrozen = errors.New("attempted to set a custom driver after slimgoose has been initiated")

// State is the lifecycle state of a Selector.
type State int

const (
	Configurable State = iota
	Frozen
)

func (s State) String() string {
	switch s {
	case Configurable:
		return "configurable"
	case Frozen:
		return "frozen"
	}
	return "unknown"
}

// Driver opens connections.
type Driver interface {
	Connect(ctx context.Context, cfg mongodb.Config) (*mongodb.Mongo, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(ctx context.Context, cfg mongodb.Config) (*mongodb.Mongo, error)

// Connect calls f(ctx, cfg).
func (f DriverFunc) Connect(ctx context.Context, cfg mongodb.Config) (*mongodb.Mongo, error) {
	return f(ctx, cfg)
}

// DefaultDriver connects with mongodb.NewMongo.
var DefaultDriver Driver = DriverFunc(mongodb.NewMongo)

// Selector holds the selected driver. It is safe for concurrent use.
type Selector struct {
	mu     sync.RWMutex
	driver Driver
	state  State
}

// New returns a configurable selector using DefaultDriver.
func New() *Selector {
	return &Selector{driver: DefaultDriver}
}

// Use selects d. A nil driver restores DefaultDriver.
func (s *Selector) Use(d Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Frozen {
		return ErrFrozen
	}
	if d == nil {
		d = DefaultDriver
	}
	s.driver = d
	return nil
}

// Driver returns the selected driver.
func (s *Selector) Driver() Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.driver == nil {
		return DefaultDriver
	}
	return s.driver
}

// Freeze prevents further changes. Freezing twice is a no-op.
func (s *Selector) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Frozen
}

// State returns the current state.
func (s *Selector) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Frozen reports whether Freeze has been called.
func (s *Selector) Frozen() bool {
	return s.State() == Frozen
}
