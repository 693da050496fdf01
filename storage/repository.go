// Package storage provides the persistence layer of the provenance service:
// the in-memory repository owning all domain records for the process
// lifetime, the property-graph encoder, and the Bolt adapters for Neo4J and
// Memgraph compatible stores.
package storage

import (
	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
)

// InMemoryRepository is the typed, insertion-ordered collection of all
// domain records ever created. The translator exclusively owns it; lookups
// are restricted to the semantic keys the translator navigates by.
//
// The repository is not safe for concurrent use. The translator is
// single-threaded cooperative; callers serialize access.
type InMemoryRepository struct {
	pipelineVersions         []*domain.PipelineVersion
	pipelineVersionRevisions []*domain.PipelineVersionRevision
	pipelineVersionCreations []*domain.PipelineVersionCreation
	pipelineChanges          []*domain.PipelineChange
	operators                []*domain.Operator
	operatorRevisions        []*domain.OperatorRevision
	operatorRuns             []*domain.OperatorRun
	operatorExecutions       []*domain.OperatorExecution
	connections              []*domain.Connection
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Add inserts a record into the collection of its type. Unknown record types
// are ignored.
func (r *InMemoryRepository) Add(record any) {
	switch record := record.(type) {
	case *domain.PipelineVersion:
		r.pipelineVersions = append(r.pipelineVersions, record)
	case *domain.PipelineVersionRevision:
		r.pipelineVersionRevisions = append(r.pipelineVersionRevisions, record)
	case *domain.PipelineVersionCreation:
		r.pipelineVersionCreations = append(r.pipelineVersionCreations, record)
	case *domain.PipelineChange:
		r.pipelineChanges = append(r.pipelineChanges, record)
	case *domain.Operator:
		r.operators = append(r.operators, record)
	case *domain.OperatorRevision:
		r.operatorRevisions = append(r.operatorRevisions, record)
	case *domain.OperatorRun:
		r.operatorRuns = append(r.operatorRuns, record)
	case *domain.OperatorExecution:
		r.operatorExecutions = append(r.operatorExecutions, record)
	case *domain.Connection:
		r.connections = append(r.connections, record)
	}
}

// Clear drops everything.
func (r *InMemoryRepository) Clear() {
	*r = InMemoryRepository{}
}

// PipelineVersions returns all pipeline versions in insertion order.
func (r *InMemoryRepository) PipelineVersions() []*domain.PipelineVersion {
	return r.pipelineVersions
}

// PipelineVersionByID returns the first pipeline version with the given id,
// or nil.
func (r *InMemoryRepository) PipelineVersionByID(id int) *domain.PipelineVersion {
	for _, version := range r.pipelineVersions {
		if version.ID == id {
			return version
		}
	}
	return nil
}

// PipelineVersionRevisions returns the revisions of a pipeline version in
// insertion order.
func (r *InMemoryRepository) PipelineVersionRevisions(version *domain.PipelineVersion) []*domain.PipelineVersionRevision {
	var revisions []*domain.PipelineVersionRevision
	for _, revision := range r.pipelineVersionRevisions {
		if revision.PipelineVersion != nil && revision.PipelineVersion.ID == version.ID {
			revisions = append(revisions, revision)
		}
	}
	return revisions
}

// LastPipelineVersionRevision returns the most recently inserted revision of
// a pipeline version, or nil.
func (r *InMemoryRepository) LastPipelineVersionRevision(version *domain.PipelineVersion) *domain.PipelineVersionRevision {
	revisions := r.PipelineVersionRevisions(version)
	if len(revisions) == 0 {
		return nil
	}
	return revisions[len(revisions)-1]
}

// PipelineVersionRevisionByID returns the first revision of a pipeline
// version with the given sequence id, or nil.
func (r *InMemoryRepository) PipelineVersionRevisionByID(version *domain.PipelineVersion, id int) *domain.PipelineVersionRevision {
	for _, revision := range r.pipelineVersionRevisions {
		if revision.PipelineVersion != nil && revision.PipelineVersion.ID == version.ID && revision.ID == id {
			return revision
		}
	}
	return nil
}

// PipelineVersionCreationByVersion returns the creation activity of a
// pipeline version, or nil.
func (r *InMemoryRepository) PipelineVersionCreationByVersion(version *domain.PipelineVersion) *domain.PipelineVersionCreation {
	for _, creation := range r.pipelineVersionCreations {
		revision := creation.PipelineVersionRevision
		if revision != nil && revision.PipelineVersion != nil && revision.PipelineVersion.ID == version.ID {
			return creation
		}
	}
	return nil
}

// PipelineChanges returns the changes that produced the given revision, in
// insertion order.
func (r *InMemoryRepository) PipelineChanges(revision *domain.PipelineVersionRevision) []*domain.PipelineChange {
	var changes []*domain.PipelineChange
	for _, change := range r.pipelineChanges {
		if change.PipelineVersionRevision != nil && change.PipelineVersionRevision.UUID == revision.UUID {
			changes = append(changes, change)
		}
	}
	return changes
}

// LastPipelineChange returns the most recent change that produced the given
// revision, or nil.
func (r *InMemoryRepository) LastPipelineChange(revision *domain.PipelineVersionRevision) *domain.PipelineChange {
	changes := r.PipelineChanges(revision)
	if len(changes) == 0 {
		return nil
	}
	return changes[len(changes)-1]
}

// OperatorRevisionByUUID returns the operator revision with the given uuid,
// or nil.
func (r *InMemoryRepository) OperatorRevisionByUUID(uuid string) *domain.OperatorRevision {
	for _, revision := range r.operatorRevisions {
		if revision.UUID == uuid {
			return revision
		}
	}
	return nil
}
