package testdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/aalemi-dev/slimgoose/mongodb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Provisioner creates throwaway MongoDB servers and returns their connection URI.
type Provisioner interface {
	CreateServer(ctx context.Context) (string, error)
}

// ProvisionerFunc adapts a function to the Provisioner interface.
type ProvisionerFunc func(ctx context.Context) (string, error)

// CreateServer calls f(ctx).
func (f ProvisionerFunc) CreateServer(ctx context.Context) (string, error) {
	return f(ctx)
}

// ContainerProvisioner starts one MongoDB container per CreateServer call.
type ContainerProvisioner struct {
	cfg    Config
	logger Logger

	mu         sync.Mutex
	containers []testcontainers.Container
}

// NewContainerProvisioner returns a provisioner using cfg, with defaults for zero fields.
func NewContainerProvisioner(cfg Config) *ContainerProvisioner {
	if cfg.Image == "" {
		cfg.Image = DefaultImage
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = defaultStartupTimeout
	}
	return &ContainerProvisioner{cfg: cfg}
}

// WithLogger attaches a logger for container lifecycle events.
func (p *ContainerProvisioner) WithLogger(logger Logger) *ContainerProvisioner {
	p.logger = logger
	return p
}

// CreateServer starts a container and returns a mongodb:// URI pointing at it.
func (p *ContainerProvisioner) CreateServer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        p.cfg.Image,
		ExposedPorts: []string{mongoPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort(mongoPort),
		).WithDeadline(p.cfg.StartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start mongo container: %w", err)
	}

	p.mu.Lock()
	p.containers = append(p.containers, container)
	p.mu.Unlock()

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, mongoPort)
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	if p.logger != nil {
		p.logger.InfoWithContext(ctx, "Started test MongoDB server", nil, map[string]interface{}{
			"image": p.cfg.Image,
			"uri":   uri,
		})
	}
	return uri, nil
}

// Terminate stops every container started by this provisioner.
func (p *ContainerProvisioner) Terminate(ctx context.Context) error {
	p.mu.Lock()
	containers := p.containers
	p.containers = nil
	p.mu.Unlock()

	var errs []error
	for _, c := range containers {
		if err := c.Terminate(ctx); err != nil {
			errs = append(errs, err)
			if p.logger != nil {
				p.logger.WarnWithContext(ctx, "Failed to terminate test MongoDB server", err)
			}
		}
	}
	return errors.Join(errs...)
}

// FromEnv returns a provisioner that hands out the URI in EnvURI when it is set,
// and fallback otherwise.
func FromEnv(fallback Provisioner) Provisioner {
	return ProvisionerFunc(func(ctx context.Context) (string, error) {
		if uri := os.Getenv(EnvURI); uri != "" {
			return uri, nil
		}
		return fallback.CreateServer(ctx)
	})
}

// ResetDatabase drops the database of conn.
func ResetDatabase(ctx context.Context, conn *mongodb.Mongo) error {
	if conn == nil {
		return mongodb.ErrNotConnected
	}
	if err := conn.DropDatabase(ctx); err != nil {
		return fmt.Errorf("failed to reset test database: %w", err)
	}
	return nil
}
