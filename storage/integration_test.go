//go:build integration

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provinspector "github.com/dbis-ilm/streamvizzard-provinspector"
	containertesting "github.com/dbis-ilm/streamvizzard-provinspector/containers/testing"
	"github.com/dbis-ilm/streamvizzard-provinspector/data"
	"github.com/dbis-ilm/streamvizzard-provinspector/storage"
)

// countNodesAndEdges queries the totals of the backing graph.
func countNodesAndEdges(t *testing.T, ctx context.Context, database *storage.ProvGraphDatabase) (int64, int64) {
	t.Helper()

	cursor, err := database.Query(ctx, "MATCH (n) RETURN count(n) AS c")
	require.NoError(t, err)
	require.Len(t, cursor.Records, 1)
	nodes, _ := cursor.Records[0].Get("c")

	cursor, err = database.Query(ctx, "MATCH ()-[r]->() RETURN count(r) AS c")
	require.NoError(t, err)
	require.Len(t, cursor.Records, 1)
	edges, _ := cursor.Records[0].Get("c")

	return nodes.(int64), edges.(int64)
}

func TestNeo4JAdapter(t *testing.T) {
	ctx := context.Background()

	uri, cleanup, err := containertesting.SetupNeo4J(ctx, t, nil)
	require.NoError(t, err)
	defer cleanup()

	adapterConfig := storage.DefaultNeo4JAdapterConfig()
	adapterConfig.URI = uri
	adapterConfig.UseDocker = false

	adapter, err := storage.NewNeo4JAdapter(ctx, adapterConfig)
	require.NoError(t, err)

	database, err := storage.NewProvGraphDatabase(ctx, adapter)
	require.NoError(t, err)
	defer database.Shutdown(ctx)

	inspector := provinspector.New(database)

	require.NoError(t, inspector.Initialize(ctx, []data.PipelineChangeData{
		&data.OperatorCreationData{ID: "i-1", OperatorID: 7, OperatorName: "map", OperatorData: map[string]any{"lr": 0.1}},
		&data.OperatorCreationData{ID: "i-2", OperatorID: 8, OperatorName: "sink", OperatorData: map[string]any{}},
		&data.ConnectionCreationData{ID: "i-3", ConnectionID: 9, FromOperatorID: 7, ToOperatorID: 8},
	}))

	parent := 0
	steps := []*data.DebugStepData{
		{
			ID: "s-1", Timestamp: 1700000000, BranchID: 0,
			OperatorStepType: "OnTupleProcessed",
			Changes: []data.PipelineChangeData{
				&data.OperatorModificationData{ID: "u-1", OperatorID: 7, OperatorName: "map", ChangedParameter: "lr", ChangedValue: 0.2},
			},
		},
		{
			ID: "s-2", Timestamp: 1700000001, BranchID: 1, ParentBranchID: &parent,
			OperatorStepType: "OnTupleProcessed",
		},
		{
			ID: "s-3", Timestamp: 1700000002, BranchID: 1, ParentBranchID: &parent,
			OperatorID: 7, OperatorName: "map", OperatorStepType: "OnOpExecuted",
			OperatorMetrics: []data.MetricData{{Name: "loss", Value: 0.7}},
		},
	}
	for _, step := range steps {
		require.NoError(t, inspector.Update(ctx, step))
	}

	t.Run("graph contains the expected provenance", func(t *testing.T) {
		nodes, edges := countNodesAndEdges(t, ctx, database)
		assert.Greater(t, nodes, int64(0))
		assert.Greater(t, edges, int64(0))

		cursor, err := database.Query(ctx,
			"MATCH (m {`provinspector:identifier`: 'Metric?name=loss&value=0.7'}) RETURN count(m) AS c")
		require.NoError(t, err)
		count, _ := cursor.Records[0].Get("c")
		assert.Equal(t, int64(1), count)
	})

	t.Run("a duplicate initialize keeps counts stable", func(t *testing.T) {
		nodesBefore, edgesBefore := countNodesAndEdges(t, ctx, database)

		// A duplicate initialize is a warning; the graph must not change
		require.NoError(t, inspector.Initialize(ctx, nil))

		nodesAfter, edgesAfter := countNodesAndEdges(t, ctx, database)
		assert.Equal(t, nodesBefore, nodesAfter)
		assert.Equal(t, edgesBefore, edgesAfter)
	})

	t.Run("clear empties the graph", func(t *testing.T) {
		require.NoError(t, inspector.Clear(ctx))

		cursor, err := database.Query(ctx, "MATCH (n) RETURN n")
		require.NoError(t, err)
		assert.Empty(t, cursor.Records)
	})
}

func TestMemgraphAdapter(t *testing.T) {
	ctx := context.Background()

	uri, cleanup, err := containertesting.SetupMemgraph(ctx, t, nil)
	require.NoError(t, err)
	defer cleanup()

	adapterConfig := storage.DefaultMemgraphAdapterConfig()
	adapterConfig.URI = uri
	adapterConfig.UseDocker = false
	adapterConfig.DatabaseName = ""

	adapter, err := storage.NewMemgraphAdapter(ctx, adapterConfig)
	require.NoError(t, err)

	database, err := storage.NewProvGraphDatabase(ctx, adapter)
	require.NoError(t, err)
	defer database.Shutdown(ctx)

	inspector := provinspector.New(database)

	require.NoError(t, inspector.Initialize(ctx, []data.PipelineChangeData{
		&data.OperatorCreationData{ID: "i-1", OperatorID: 7, OperatorName: "map", OperatorData: map[string]any{"lr": 0.1}},
	}))

	cursor, err := database.Query(ctx, "MATCH (n) RETURN count(n) AS c")
	require.NoError(t, err)
	count, _ := cursor.Records[0].Get("c")
	assert.Greater(t, count.(int64), int64(0))

	require.NoError(t, inspector.Clear(ctx))
	cursor, err = database.Query(ctx, "MATCH (n) RETURN n")
	require.NoError(t, err)
	assert.Empty(t, cursor.Records)
}
