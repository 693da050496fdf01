package containers

import (
	"context"

	"github.com/docker/docker/client"
)

// Neo4JConfig holds configuration for the bundled Neo4J container.
type Neo4JConfig struct {
	// ContainerName is the name for the Neo4J container
	ContainerName string
	// Image is the Docker image to use (default: "neo4j:4.4")
	Image string
	// BoltPort is the host port for the Bolt protocol (default: 7687)
	BoltPort string
	// HTTPPort is the host port for the Neo4J browser (default: 7474)
	HTTPPort string
	// Auth is the NEO4J_AUTH value (default: "neo4j/neo4jneo4j")
	Auth string
}

// DefaultNeo4JConfig returns the default bundled Neo4J configuration.
func DefaultNeo4JConfig() Neo4JConfig {
	return Neo4JConfig{
		ContainerName: "neo4j",
		Image:         "neo4j:4.4",
		BoltPort:      "7687",
		HTTPPort:      "7474",
		Auth:          "neo4j/neo4jneo4j",
	}
}

// StartNeo4J launches a Neo4J container with Bolt and HTTP bound to
// localhost. The container is auto-removed on stop.
func StartNeo4J(ctx context.Context, cli *client.Client, config Neo4JConfig) (string, error) {
	return startContainer(ctx, cli, config.ContainerName, config.Image,
		map[string]string{
			"7687/tcp": config.BoltPort,
			"7474/tcp": config.HTTPPort,
		},
		[]string{"NEO4J_AUTH=" + config.Auth},
	)
}
