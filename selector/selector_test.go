package selector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStub = errors.New("stub driver")

func stubDriver() Driver {
	return DriverFunc(func(context.Context, mongodb.Config) (*mongodb.Mongo, error) {
		return nil, errStub
	})
}

func TestNew_DefaultDriver(t *testing.T) {
	t.Parallel()
	s := New()
	assert.Equal(t, Configurable, s.State())
	assert.False(t, s.Frozen())
	assert.NotNil(t, s.Driver())

	var zero Selector
	assert.NotNil(t, zero.Driver())
}

func TestUse_BeforeFreeze(t *testing.T) {
	t.Parallel()
	s := New()
	require.NoError(t, s.Use(stubDriver()))

	_, err := s.Driver().Connect(context.Background(), mongodb.Config{})
	assert.ErrorIs(t, err, errStub)

	require.NoError(t, s.Use(nil))
	_, err = s.Driver().Connect(context.Background(), mongodb.Config{})
	assert.ErrorIs(t, err, mongodb.ErrConnectionFailed)
}

func TestFreeze(t *testing.T) {
	t.Parallel()
	s := New()
	s.Freeze()
	s.Freeze()

	assert.True(t, s.Frozen())
	assert.Equal(t, "frozen", s.State().String())

	err := s.Use(stubDriver())
	assert.ErrorIs(t, err, ErrFrozen)
	assert.EqualError(t, err, "attempted to set a custom driver after slimgoose has been initiated")
	assert.ErrorIs(t, s.Use(nil), ErrFrozen)

	// the driver selected before freezing stays in place
	_, err = s.Driver().Connect(context.Background(), mongodb.Config{})
	assert.ErrorIs(t, err, mongodb.ErrConnectionFailed)
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "configurable", Configurable.String())
	assert.Equal(t, "unknown", State(7).String())
}

func TestConcurrentUseAndFreeze(t *testing.T) {
	t.Parallel()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Use(stubDriver())
		}()
		go func() {
			defer wg.Done()
			_ = s.Driver()
		}()
	}
	s.Freeze()
	wg.Wait()
	assert.ErrorIs(t, s.Use(nil), ErrFrozen)
}
