package storage

import (
	"context"
	"fmt"
)

// MemoryAdapter is an in-process Adapter implementation with the same merge
// semantics as the Bolt adapters: nodes merge on the primary key, edges on
// endpoints and relationship type. It backs unit tests and dry runs where no
// graph store is available; the query surface is limited to an empty cursor
// for an empty graph.
type MemoryAdapter struct {
	nodes map[string]*Node
	edges map[string]*Edge
}

// NewMemoryAdapter returns an empty in-process adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// EnsureConstraints is a no-op; the node map is unique by construction.
func (a *MemoryAdapter) EnsureConstraints(ctx context.Context) error {
	return nil
}

func edgeKey(edge *Edge) string {
	return edge.SourceID + "\x00" + edge.Label + "\x00" + edge.TargetID
}

// ImportSubgraph merges the subgraph into the in-process graph.
func (a *MemoryAdapter) ImportSubgraph(ctx context.Context, subgraph *Subgraph) error {
	for id, node := range subgraph.Nodes {
		existing, ok := a.nodes[id]
		if !ok {
			existing = &Node{Properties: make(map[string]any)}
			a.nodes[id] = existing
		}
		for _, label := range node.Labels {
			if !containsLabel(existing.Labels, label) {
				existing.Labels = append(existing.Labels, label)
			}
		}
		for key, value := range node.Properties {
			existing.Properties[key] = value
		}
	}

	for _, edge := range subgraph.Edges {
		key := edgeKey(edge)
		existing, ok := a.edges[key]
		if !ok {
			existing = &Edge{
				Label:      edge.Label,
				SourceID:   edge.SourceID,
				TargetID:   edge.TargetID,
				Properties: make(map[string]any),
			}
			a.edges[key] = existing
		}
		for propKey, value := range edge.Properties {
			existing.Properties[propKey] = value
		}
	}

	return nil
}

// Run supports only the empty-graph probe; anything else reports that no
// backing store is attached.
func (a *MemoryAdapter) Run(ctx context.Context, cypher string, params map[string]any) (*Cursor, error) {
	if len(a.nodes) == 0 {
		return &Cursor{}, nil
	}
	return nil, fmt.Errorf("memory adapter does not support queries")
}

// Clear drops the in-process graph.
func (a *MemoryAdapter) Clear(ctx context.Context) error {
	a.nodes = make(map[string]*Node)
	a.edges = make(map[string]*Edge)
	return nil
}

// Shutdown is a no-op.
func (a *MemoryAdapter) Shutdown(ctx context.Context) error {
	return nil
}

// Nodes returns the merged nodes keyed by identifier.
func (a *MemoryAdapter) Nodes() map[string]*Node {
	return a.nodes
}

// Edges returns the merged edges keyed by source, label, and target.
func (a *MemoryAdapter) Edges() map[string]*Edge {
	return a.edges
}

// Node returns the merged node with the given identifier, or nil.
func (a *MemoryAdapter) Node(id string) *Node {
	return a.nodes[id]
}

// EdgesByLabel returns the merged edges with the given label.
func (a *MemoryAdapter) EdgesByLabel(label string) []*Edge {
	var edges []*Edge
	for _, edge := range a.edges {
		if edge.Label == label {
			edges = append(edges, edge)
		}
	}
	return edges
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
