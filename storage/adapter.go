package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/client"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dbis-ilm/streamvizzard-provinspector/common"
	"github.com/dbis-ilm/streamvizzard-provinspector/containers"
)

// Cursor is the result of a pass-through query: the record keys plus the
// collected records.
type Cursor struct {
	Keys    []string
	Records []*neo4j.Record
}

// Adapter is the contract both graph-store adapters expose. All graph
// mutations flow through ImportSubgraph, which is atomic at the transaction
// boundary; node and edge merges are idempotent on the primary key, so
// replaying the same event stream yields a stable graph.
type Adapter interface {
	// EnsureConstraints establishes the per-class uniqueness constraints on
	// the primary key property.
	EnsureConstraints(ctx context.Context) error
	// ImportSubgraph merges an encoded subgraph into the backing store in a
	// single transaction.
	ImportSubgraph(ctx context.Context, subgraph *Subgraph) error
	// Run executes a query string and returns a cursor.
	Run(ctx context.Context, cypher string, params map[string]any) (*Cursor, error)
	// Clear removes all nodes and relationships.
	Clear(ctx context.Context) error
	// Shutdown releases the connection and stops a bundled container.
	Shutdown(ctx context.Context) error
}

// escapeLabel quotes a label or relationship type for safe interpolation.
// Labels are not parameterizable in Cypher.
func escapeLabel(label string) string {
	return "`" + strings.ReplaceAll(label, "`", "``") + "`"
}

// boltAdapter carries the connection handling shared by the Neo4J and
// Memgraph adapters.
type boltAdapter struct {
	driver       neo4j.DriverWithContext
	databaseName string
}

// connect establishes the Bolt connection, retrying with a one-second delay
// for a bounded number of attempts. The backing store may still be booting
// when launched as a bundled container.
func (a *boltAdapter) connect(ctx context.Context, uri string, auth neo4j.AuthToken, databaseName string, retries int) error {
	a.databaseName = databaseName

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		driver, err := neo4j.NewDriverWithContext(uri, auth)
		if err == nil {
			if err = driver.VerifyConnectivity(ctx); err == nil {
				a.driver = driver
				return nil
			}
			driver.Close(ctx)
		}
		lastErr = err

		common.Logger.WithField("uri", uri).WithError(err).Debug("graph store not ready, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	return fmt.Errorf("failed to connect to %s after %d attempts: %w", uri, retries, lastErr)
}

func (a *boltAdapter) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return a.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: a.databaseName,
	})
}

// ImportSubgraph merges the subgraph in one write transaction. Nodes merge
// on the primary label and primary key and then receive their class labels
// and properties; edges merge on endpoints and relationship type.
func (a *boltAdapter) ImportSubgraph(ctx context.Context, subgraph *Subgraph) error {
	session := a.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for id, node := range subgraph.Nodes {
			var query strings.Builder
			fmt.Fprintf(&query, "MERGE (n:%s {%s: $id}) SET n += $props",
				escapeLabel(ProvInspectorNode), escapeLabel(ProvInspectorID))
			for _, label := range node.Labels {
				if label == ProvInspectorNode {
					continue
				}
				fmt.Fprintf(&query, " SET n:%s", escapeLabel(label))
			}

			if _, err := tx.Run(ctx, query.String(), map[string]any{
				"id":    id,
				"props": node.Properties,
			}); err != nil {
				return nil, err
			}
		}

		for _, edge := range subgraph.Edges {
			query := fmt.Sprintf(
				"MATCH (a:%[1]s {%[2]s: $source}) MATCH (b:%[1]s {%[2]s: $target}) MERGE (a)-[r:%[3]s]->(b) SET r += $props",
				escapeLabel(ProvInspectorNode), escapeLabel(ProvInspectorID), escapeLabel(edge.Label))

			if _, err := tx.Run(ctx, query, map[string]any{
				"source": edge.SourceID,
				"target": edge.TargetID,
				"props":  edge.Properties,
			}); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to import subgraph: %w", err)
	}

	return nil
}

// Run executes a query string and collects the result into a cursor.
func (a *boltAdapter) Run(ctx context.Context, cypher string, params map[string]any) (*Cursor, error) {
	session := a.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	keys, err := result.Keys()
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return &Cursor{Keys: keys, Records: records}, nil
}

// Clear removes all nodes and relationships from the store.
func (a *boltAdapter) Clear(ctx context.Context) error {
	session := a.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("failed to clear graph: %w", err)
	}

	return nil
}

func (a *boltAdapter) disconnect(ctx context.Context) error {
	if a.driver == nil {
		return nil
	}
	err := a.driver.Close(ctx)
	a.driver = nil
	return err
}

// Neo4JAdapterConfig holds configuration for the Neo4J adapter.
type Neo4JAdapterConfig struct {
	// URI is the Bolt endpoint (default: "bolt://127.0.0.1:7687")
	URI string
	// Username and Password authenticate the Bolt connection
	Username string
	Password string
	// DatabaseName selects the database (default: "neo4j")
	DatabaseName string
	// UseDocker launches a bundled Neo4J container before connecting
	UseDocker bool
	// DockerSocket is the Docker engine endpoint for the bundled container
	DockerSocket string
	// Container configures the bundled container
	Container containers.Neo4JConfig
	// ConnectRetries bounds the connection attempts (default: 30)
	ConnectRetries int
}

// DefaultNeo4JAdapterConfig returns the default Neo4J adapter configuration
// matching the bundled container launch.
func DefaultNeo4JAdapterConfig() Neo4JAdapterConfig {
	return Neo4JAdapterConfig{
		URI:            "bolt://127.0.0.1:7687",
		Username:       "neo4j",
		Password:       "neo4jneo4j",
		DatabaseName:   "neo4j",
		UseDocker:      true,
		DockerSocket:   containers.DefaultDockerSocket,
		Container:      containers.DefaultNeo4JConfig(),
		ConnectRetries: 30,
	}
}

// Neo4JAdapter connects the provenance store to a Neo4J-compatible graph
// database.
type Neo4JAdapter struct {
	boltAdapter
	config       Neo4JAdapterConfig
	dockerClient *client.Client
	containerID  string
}

// NewNeo4JAdapter launches the bundled container when configured and
// establishes the Bolt connection.
func NewNeo4JAdapter(ctx context.Context, config Neo4JAdapterConfig) (*Neo4JAdapter, error) {
	adapter := &Neo4JAdapter{config: config}

	if config.UseDocker {
		cli, err := containers.NewClient(config.DockerSocket)
		if err != nil {
			return nil, err
		}
		containerID, err := containers.StartNeo4J(ctx, cli, config.Container)
		if err != nil {
			return nil, err
		}
		adapter.dockerClient = cli
		adapter.containerID = containerID
	}

	auth := neo4j.BasicAuth(config.Username, config.Password, "")
	if err := adapter.connect(ctx, config.URI, auth, config.DatabaseName, config.ConnectRetries); err != nil {
		return nil, err
	}

	return adapter, nil
}

// EnsureConstraints creates the uniqueness constraints on the primary key
// property for every PROV class label.
func (a *Neo4JAdapter) EnsureConstraints(ctx context.Context) error {
	session := a.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, label := range NodeLabels {
		query := fmt.Sprintf(
			"CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			escapeLabel(label), escapeLabel(ProvInspectorID))
		if _, err := session.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to create constraint on %s: %w", label, err)
		}
	}

	return nil
}

// Shutdown closes the Bolt connection and stops the bundled container.
func (a *Neo4JAdapter) Shutdown(ctx context.Context) error {
	if err := a.disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close driver: %w", err)
	}

	if a.dockerClient != nil {
		if err := containers.StopContainer(ctx, a.dockerClient, a.containerID); err != nil {
			return err
		}
		a.dockerClient = nil
	}

	return nil
}

// MemgraphAdapterConfig holds configuration for the Memgraph adapter.
type MemgraphAdapterConfig struct {
	// URI is the Bolt endpoint (default: "bolt://127.0.0.1:7687")
	URI string
	// DatabaseName selects the database (default: "memgraph")
	DatabaseName string
	// UseDocker launches a bundled Memgraph container before connecting
	UseDocker bool
	// DockerSocket is the Docker engine endpoint for the bundled container
	DockerSocket string
	// Container configures the bundled container
	Container containers.MemgraphConfig
	// ConnectRetries bounds the connection attempts (default: 30)
	ConnectRetries int
}

// DefaultMemgraphAdapterConfig returns the default Memgraph adapter
// configuration matching the bundled container launch. Memgraph runs with
// empty credentials.
func DefaultMemgraphAdapterConfig() MemgraphAdapterConfig {
	return MemgraphAdapterConfig{
		URI:            "bolt://127.0.0.1:7687",
		DatabaseName:   "memgraph",
		UseDocker:      true,
		DockerSocket:   containers.DefaultDockerSocket,
		Container:      containers.DefaultMemgraphConfig(),
		ConnectRetries: 30,
	}
}

// MemgraphAdapter connects the provenance store to a Memgraph-compatible
// graph database.
type MemgraphAdapter struct {
	boltAdapter
	config       MemgraphAdapterConfig
	dockerClient *client.Client
	containerID  string
}

// NewMemgraphAdapter launches the bundled container when configured and
// establishes the Bolt connection.
func NewMemgraphAdapter(ctx context.Context, config MemgraphAdapterConfig) (*MemgraphAdapter, error) {
	adapter := &MemgraphAdapter{config: config}

	if config.UseDocker {
		cli, err := containers.NewClient(config.DockerSocket)
		if err != nil {
			return nil, err
		}
		containerID, err := containers.StartMemgraph(ctx, cli, config.Container)
		if err != nil {
			return nil, err
		}
		adapter.dockerClient = cli
		adapter.containerID = containerID
	}

	if err := adapter.connect(ctx, config.URI, neo4j.NoAuth(), config.DatabaseName, config.ConnectRetries); err != nil {
		return nil, err
	}

	return adapter, nil
}

// EnsureConstraints creates the uniqueness constraints on the primary key
// property for every PROV class label, in Memgraph's constraint dialect.
func (a *MemgraphAdapter) EnsureConstraints(ctx context.Context) error {
	session := a.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, label := range NodeLabels {
		query := fmt.Sprintf(
			"CREATE CONSTRAINT ON (n:%s) ASSERT n.%s IS UNIQUE",
			escapeLabel(label), escapeLabel(ProvInspectorID))
		if _, err := session.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to create constraint on %s: %w", label, err)
		}
	}

	return nil
}

// Shutdown closes the Bolt connection and stops the bundled container.
func (a *MemgraphAdapter) Shutdown(ctx context.Context) error {
	if err := a.disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close driver: %w", err)
	}

	if a.dockerClient != nil {
		if err := containers.StopContainer(ctx, a.dockerClient, a.containerID); err != nil {
			return err
		}
		a.dockerClient = nil
	}

	return nil
}
