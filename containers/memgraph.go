package containers

import (
	"context"

	"github.com/docker/docker/client"
)

// MemgraphConfig holds configuration for the bundled Memgraph container.
type MemgraphConfig struct {
	// ContainerName is the name for the Memgraph container
	ContainerName string
	// Image is the Docker image to use (default: "memgraph/memgraph")
	Image string
	// BoltPort is the host port for the Bolt protocol (default: 7687)
	BoltPort string
	// MonitoringPort is the host port for the monitoring websocket (default: 7444)
	MonitoringPort string
	// LabPort is the host port for Memgraph Lab (default: 3000)
	LabPort string
}

// DefaultMemgraphConfig returns the default bundled Memgraph configuration.
func DefaultMemgraphConfig() MemgraphConfig {
	return MemgraphConfig{
		ContainerName:  "memgraph",
		Image:          "memgraph/memgraph",
		BoltPort:       "7687",
		MonitoringPort: "7444",
		LabPort:        "3000",
	}
}

// StartMemgraph launches a Memgraph container with all service ports bound
// to localhost. Memgraph runs without credentials. The container is
// auto-removed on stop.
func StartMemgraph(ctx context.Context, cli *client.Client, config MemgraphConfig) (string, error) {
	return startContainer(ctx, cli, config.ContainerName, config.Image,
		map[string]string{
			"7687/tcp": config.BoltPort,
			"7444/tcp": config.MonitoringPort,
			"3000/tcp": config.LabPort,
		},
		nil,
	)
}
