package storage

import (
	"context"
	"fmt"

	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// ProvGraphDatabase persists PROV document fragments into a property graph
// reachable through an Adapter. Importing encodes the fragment and merges it
// on the stable primary key, so repeated imports of the same fragment leave
// the graph unchanged.
type ProvGraphDatabase struct {
	Adapter Adapter
}

// NewProvGraphDatabase wraps an adapter and establishes the uniqueness
// constraints the merge relies on.
func NewProvGraphDatabase(ctx context.Context, adapter Adapter) (*ProvGraphDatabase, error) {
	if err := adapter.EnsureConstraints(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure constraints: %w", err)
	}

	return &ProvGraphDatabase{Adapter: adapter}, nil
}

// ImportGraph encodes a PROV document and merges it into the backing store
// in a single transaction.
func (db *ProvGraphDatabase) ImportGraph(ctx context.Context, doc *prov.Document) error {
	return db.Adapter.ImportSubgraph(ctx, EncodeDocument(doc))
}

// Query passes a query string through to the backing store.
func (db *ProvGraphDatabase) Query(ctx context.Context, cypher string) (*Cursor, error) {
	return db.Adapter.Run(ctx, cypher, nil)
}

// Clear removes all nodes and relationships.
func (db *ProvGraphDatabase) Clear(ctx context.Context) error {
	return db.Adapter.Clear(ctx)
}

// Shutdown releases the adapter.
func (db *ProvGraphDatabase) Shutdown(ctx context.Context) error {
	return db.Adapter.Shutdown(ctx)
}
