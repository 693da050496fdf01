package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MemgraphConfig holds configuration for the Memgraph testcontainer setup.
type MemgraphConfig struct {
	// Image is the Docker image to use (default: "memgraph/memgraph")
	Image string
	// StartupTimeout is the maximum time to wait for Bolt readiness
	StartupTimeout time.Duration
}

// DefaultMemgraphConfig returns the default Memgraph configuration for
// testing.
func DefaultMemgraphConfig() MemgraphConfig {
	return MemgraphConfig{
		Image:          "memgraph/memgraph",
		StartupTimeout: 60 * time.Second,
	}
}

// SetupMemgraph creates a Memgraph container for integration testing and
// returns the Bolt URI and a cleanup function. Memgraph runs with empty
// credentials.
func SetupMemgraph(ctx context.Context, t *testing.T, config *MemgraphConfig) (string, ContainerCleanup, error) {
	t.Helper()

	if config == nil {
		defaultConfig := DefaultMemgraphConfig()
		config = &defaultConfig
	}

	request := testcontainers.ContainerRequest{
		Image:        config.Image,
		ExposedPorts: []string{"7687/tcp"},
		WaitingFor:   wait.ForListeningPort("7687/tcp").WithStartupTimeout(config.StartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to start Memgraph container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get Memgraph host: %w", err)
	}
	port, err := container.MappedPort(ctx, "7687/tcp")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get Memgraph Bolt port: %w", err)
	}

	uri := fmt.Sprintf("bolt://%s:%s", host, port.Port())
	return uri, createCleanupFunc(ctx, container, "Memgraph"), nil
}
