package submodel

import (
	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// ConnectionCreationModel is the provenance sub-model for the creation of a
// connection between two operators.
type ConnectionCreationModel struct {
	PipelineChange                *domain.PipelineChange
	ParentPipelineChange          *domain.PipelineChange
	ParentPipelineVersionRevision *domain.PipelineVersionRevision
}

func (m *ConnectionCreationModel) Build() *prov.Document {
	ctx := prov.NewContext()
	change := m.PipelineChange

	addChangeActivity(ctx, change, m.ParentPipelineChange)

	connection := change.Connection
	ctx.AddElement(connection, false)
	ctx.AddRelation(connection, change, prov.Generation,
		timeAndRole(change.Time, domain.RoleCreatedConnection))

	addRevisionSnapshot(ctx, change, m.ParentPipelineVersionRevision)

	return ctx.Document
}

// ConnectionDeletionModel is the provenance sub-model for the deletion of a
// connection. The connection is invalidated by the change activity.
type ConnectionDeletionModel struct {
	PipelineChange                *domain.PipelineChange
	ParentPipelineChange          *domain.PipelineChange
	ParentPipelineVersionRevision *domain.PipelineVersionRevision
}

func (m *ConnectionDeletionModel) Build() *prov.Document {
	ctx := prov.NewContext()
	change := m.PipelineChange

	addChangeActivity(ctx, change, m.ParentPipelineChange)

	connection := change.Connection
	ctx.AddElement(connection, false)
	ctx.AddRelation(connection, change, prov.Invalidation,
		timeAndRole(change.Time, domain.RoleDeletedConnection))

	addRevisionSnapshot(ctx, change, m.ParentPipelineVersionRevision)

	return ctx.Document
}
