// Package testing provides testcontainers-based graph-store setup for
// integration tests.
//
// Containers are ephemeral with randomized port allocation and are cleaned
// up after tests complete. Integration tests using this package should be
// guarded so unit runs skip them when no Docker engine is available.
package testing

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
)

// ContainerCleanup terminates a test container. Call it in defer to ensure
// containers are removed after tests.
type ContainerCleanup func()

// createCleanupFunc creates a standardized cleanup function for a test
// container.
func createCleanupFunc(ctx context.Context, container testcontainers.Container, containerType string) ContainerCleanup {
	return func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Warning: Failed to terminate %s container: %v\n", containerType, err)
		}
	}
}
