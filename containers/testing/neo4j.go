package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Neo4JConfig holds configuration for the Neo4J testcontainer setup.
type Neo4JConfig struct {
	// Image is the Docker image to use (default: "neo4j:4.4")
	Image string
	// Username and Password configure NEO4J_AUTH
	Username string
	Password string
	// StartupTimeout is the maximum time to wait for Bolt readiness
	StartupTimeout time.Duration
}

// DefaultNeo4JConfig returns the default Neo4J configuration for testing.
func DefaultNeo4JConfig() Neo4JConfig {
	return Neo4JConfig{
		Image:          "neo4j:4.4",
		Username:       "neo4j",
		Password:       "neo4jneo4j",
		StartupTimeout: 120 * time.Second,
	}
}

// SetupNeo4J creates a Neo4J container for integration testing and returns
// the Bolt URI and a cleanup function.
func SetupNeo4J(ctx context.Context, t *testing.T, config *Neo4JConfig) (string, ContainerCleanup, error) {
	t.Helper()

	if config == nil {
		defaultConfig := DefaultNeo4JConfig()
		config = &defaultConfig
	}

	request := testcontainers.ContainerRequest{
		Image:        config.Image,
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": fmt.Sprintf("%s/%s", config.Username, config.Password),
		},
		WaitingFor: wait.ForListeningPort("7687/tcp").WithStartupTimeout(config.StartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to start Neo4J container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get Neo4J host: %w", err)
	}
	port, err := container.MappedPort(ctx, "7687/tcp")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get Neo4J Bolt port: %w", err)
	}

	uri := fmt.Sprintf("bolt://%s:%s", host, port.Port())
	return uri, createCleanupFunc(ctx, container, "Neo4J"), nil
}
