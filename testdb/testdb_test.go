package testdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerProvisioner_Defaults(t *testing.T) {
	t.Parallel()
	p := NewContainerProvisioner(Config{})
	assert.Equal(t, DefaultImage, p.cfg.Image)
	assert.Equal(t, defaultStartupTimeout, p.cfg.StartupTimeout)

	p = NewContainerProvisioner(Config{Image: "mongo:6", StartupTimeout: time.Second})
	assert.Equal(t, "mongo:6", p.cfg.Image)
	assert.Equal(t, time.Second, p.cfg.StartupTimeout)
}

func TestTerminate_NothingStarted(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewContainerProvisioner(Config{}).Terminate(context.Background()))
}

func TestFromEnv(t *testing.T) {
	fallbackCalled := false
	fallback := ProvisionerFunc(func(context.Context) (string, error) {
		fallbackCalled = true
		return "mongodb://fallback:27017", nil
	})

	t.Setenv(EnvURI, "mongodb://ci:27017")
	uri, err := FromEnv(fallback).CreateServer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mongodb://ci:27017", uri)
	assert.False(t, fallbackCalled)

	t.Setenv(EnvURI, "")
	uri, err = FromEnv(fallback).CreateServer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mongodb://fallback:27017", uri)
	assert.True(t, fallbackCalled)
}

func TestFromEnv_FallbackError(t *testing.T) {
	t.Setenv(EnvURI, "")
	failure := errors.New("docker unavailable")
	_, err := FromEnv(ProvisionerFunc(func(context.Context) (string, error) { return "", failure })).CreateServer(context.Background())
	assert.ErrorIs(t, err, failure)
}

func TestResetDatabase_NilConnection(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, ResetDatabase(context.Background(), nil), mongodb.ErrNotConnected)
}

func TestContainerProvisioner_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	prov := NewContainerProvisioner(Config{})
	t.Cleanup(func() { _ = prov.Terminate(context.Background()) })

	uri, err := prov.CreateServer(ctx)
	if err != nil {
		t.Skipf("could not start mongo container: %v", err)
	}
	assert.Contains(t, uri, "mongodb://")

	conn, err := mongodb.NewMongo(ctx, mongodb.Config{URI: uri, Database: "testdb_reset"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.GracefulShutdown(context.Background()) })

	_, err = conn.Database().Collection("things").InsertOne(ctx, map[string]any{"n": 1})
	require.NoError(t, err)

	require.NoError(t, ResetDatabase(ctx, conn))

	names, err := conn.Database().ListCollectionNames(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, names)
}
