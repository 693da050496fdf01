package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

func TestEncodeDocument(t *testing.T) {
	t.Run("elements become labeled nodes with identifier property", func(t *testing.T) {
		version := &domain.PipelineVersion{ID: 0}
		doc := prov.NewDocument()
		doc.AddElement(version.ToProv())

		subgraph := EncodeDocument(doc)

		node := subgraph.Nodes["PipelineVersion?id=0"]
		require.NotNil(t, node)
		assert.ElementsMatch(t, []string{ProvInspectorNode, "Entity"}, node.Labels)
		assert.Equal(t, "PipelineVersion?id=0", node.Properties[ProvInspectorID])
		assert.Equal(t, 0, node.Properties["id"])
		assert.Equal(t, domain.TypePipelineVersion, node.Properties[prov.AttrType])
	})

	t.Run("duplicate attribute keys collapse to a list", func(t *testing.T) {
		run := &domain.OperatorRun{ID: "run-1", CreatedAt: time.Unix(1, 0)}
		doc := prov.NewDocument()
		doc.AddElement(run.ToProv())

		subgraph := EncodeDocument(doc)

		node := subgraph.Nodes["OperatorRun?id=run-1"]
		require.NotNil(t, node)
		assert.ElementsMatch(t, []any{domain.TypeOperatorRun, domain.TypeCollection},
			node.Properties[prov.AttrType])
	})

	t.Run("relations become typed edges with attribute properties", func(t *testing.T) {
		version := &domain.PipelineVersion{ID: 0}
		revision := &domain.PipelineVersionRevision{UUID: "r-0", PipelineVersion: version}
		creation := &domain.PipelineVersionCreation{UUID: "c-0", PipelineVersionRevision: revision, Time: time.Unix(1, 0)}

		ctx := prov.NewContext()
		ctx.AddElement(revision, false)
		ctx.AddElement(creation, false)
		ctx.AddRelation(revision, creation, prov.Generation, []prov.Attribute{
			{Key: prov.AttrTime, Value: creation.Time},
			{Key: prov.AttrRole, Value: domain.RoleCreatedPipelineVersionRevision},
		})

		subgraph := EncodeDocument(ctx.Document)

		require.Len(t, subgraph.Edges, 1)
		edge := subgraph.Edges[0]
		assert.Equal(t, "wasGeneratedBy", edge.Label)
		assert.Equal(t, revision.ProvIdentifier().String(), edge.SourceID)
		assert.Equal(t, creation.ProvIdentifier().String(), edge.TargetID)
		assert.Equal(t, domain.RoleCreatedPipelineVersionRevision, edge.Properties[prov.AttrRole])
		assert.Equal(t, creation.Time, edge.Properties[prov.AttrTime])
		assert.ElementsMatch(t, []any{ProvInspectorEdge, "wasGeneratedBy"},
			edge.Properties[ProvInspectorLabel])
	})

	t.Run("missing endpoints become placeholder nodes", func(t *testing.T) {
		doc := prov.NewDocument()
		doc.AddRelation(&prov.Relation{
			Kind:   prov.Membership,
			Source: prov.QualifiedNameOf("a"),
			Target: prov.QualifiedNameOf("b"),
		})

		subgraph := EncodeDocument(doc)

		require.Len(t, subgraph.Nodes, 2)
		assert.Equal(t, []string{ProvInspectorNode}, subgraph.Nodes["a"].Labels)
		assert.Equal(t, "b", subgraph.Nodes["b"].Properties[ProvInspectorID])
	})

	t.Run("literal endpoints fold into the source node", func(t *testing.T) {
		version := &domain.PipelineVersion{ID: 0}
		doc := prov.NewDocument()
		doc.AddElement(version.ToProv())
		doc.AddRelation(&prov.Relation{
			Kind:   prov.Membership,
			Source: version.ProvIdentifier(),
			Target: 42,
		})

		subgraph := EncodeDocument(doc)

		assert.Empty(t, subgraph.Edges)
		assert.Equal(t, 42, subgraph.Nodes["PipelineVersion?id=0"].Properties["hadMember"])
	})

	t.Run("bundled nodes gain a bundledIn edge", func(t *testing.T) {
		version := &domain.PipelineVersion{ID: 0}
		bundle := &prov.Bundle{Identifier: prov.QualifiedNameOf("bundle-1")}
		bundle.AddElement(version.ToProv())

		doc := prov.NewDocument()
		doc.Bundles = append(doc.Bundles, bundle)

		subgraph := EncodeDocument(doc)

		bundleNode := subgraph.Nodes["bundle-1"]
		require.NotNil(t, bundleNode)
		assert.ElementsMatch(t, []string{ProvInspectorNode, "Bundle"}, bundleNode.Labels)

		require.Len(t, subgraph.Edges, 1)
		edge := subgraph.Edges[0]
		assert.Equal(t, ProvInspectorBundledIn, edge.Label)
		assert.Equal(t, "PipelineVersion?id=0", edge.SourceID)
		assert.Equal(t, "bundle-1", edge.TargetID)
	})

	t.Run("qualified name values coerce to strings", func(t *testing.T) {
		doc := prov.NewDocument()
		doc.AddElement(prov.NewEntity(prov.QualifiedNameOf("e"), []prov.Attribute{
			{Key: "ref", Value: prov.QualifiedNameOf("other")},
			{Key: "lit", Value: prov.Literal{Value: "x"}},
			{Key: "dur", Value: 90 * time.Second},
		}))

		subgraph := EncodeDocument(doc)

		node := subgraph.Nodes["e"]
		assert.Equal(t, "other", node.Properties["ref"])
		assert.Equal(t, `"x"`, node.Properties["lit"])
	})
}

func TestMemoryAdapterMergeSemantics(t *testing.T) {
	ctx := t.Context()

	t.Run("importing the same subgraph twice is idempotent", func(t *testing.T) {
		adapter := NewMemoryAdapter()

		version := &domain.PipelineVersion{ID: 0}
		revision := &domain.PipelineVersionRevision{UUID: "r-0", PipelineVersion: version}

		provCtx := prov.NewContext()
		provCtx.AddElement(version, false)
		provCtx.AddElement(revision, false)
		provCtx.AddRelation(revision, version, prov.Specialization, nil)

		subgraph := EncodeDocument(provCtx.Document)

		require.NoError(t, adapter.ImportSubgraph(ctx, subgraph))
		nodes, edges := len(adapter.Nodes()), len(adapter.Edges())

		require.NoError(t, adapter.ImportSubgraph(ctx, subgraph))
		assert.Equal(t, nodes, len(adapter.Nodes()))
		assert.Equal(t, edges, len(adapter.Edges()))
	})

	t.Run("clear empties the graph", func(t *testing.T) {
		adapter := NewMemoryAdapter()
		doc := prov.NewDocument()
		doc.AddElement((&domain.PipelineVersion{ID: 0}).ToProv())
		require.NoError(t, adapter.ImportSubgraph(ctx, EncodeDocument(doc)))

		require.NoError(t, adapter.Clear(ctx))

		assert.Empty(t, adapter.Nodes())
		cursor, err := adapter.Run(ctx, "MATCH (n) RETURN n", nil)
		require.NoError(t, err)
		assert.Empty(t, cursor.Records)
	})
}
