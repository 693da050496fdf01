package submodel

import (
	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// PipelineVersionCreationModel is the provenance sub-model for the birth of
// a branch: the genesis of the pipeline, or a history split off an existing
// branch. Unlike the change sub-models it links the new revision to its
// parent with a plain derivation rather than a revision edge.
type PipelineVersionCreationModel struct {
	PipelineVersionCreation       *domain.PipelineVersionCreation
	ParentPipelineVersionRevision *domain.PipelineVersionRevision
	ParentPipelineVersionCreation *domain.PipelineVersionCreation
}

func (m *PipelineVersionCreationModel) Build() *prov.Document {
	ctx := prov.NewContext()
	creation := m.PipelineVersionCreation

	// Creation activity, parent creation activity, and communication edge
	ctx.AddElement(creation, false)
	if m.ParentPipelineVersionCreation != nil {
		ctx.AddElement(m.ParentPipelineVersionCreation, false)
		ctx.AddRelation(creation, m.ParentPipelineVersionCreation, prov.Communication, nil)
	}

	// The new revision with its operator revision and connection members.
	// Initial operator revisions also bring their underlying Operator along
	// with a specialization edge.
	revision := creation.PipelineVersionRevision
	ctx.AddElement(revision, false)
	for _, operatorRevision := range revision.Operators {
		ctx.AddElement(operatorRevision, false)
		ctx.AddRelation(revision, operatorRevision, prov.Membership, nil)

		operator := operatorRevision.Operator
		ctx.AddElement(operator, false)
		ctx.AddRelation(operatorRevision, operator, prov.Specialization, nil)
	}
	for _, connection := range revision.Connections {
		ctx.AddElement(connection, false)
		ctx.AddRelation(revision, connection, prov.Membership, nil)
	}
	ctx.AddRelation(revision, creation, prov.Generation,
		timeAndRole(creation.Time, domain.RoleCreatedPipelineVersionRevision))

	// Parent revision: derivation instead of a revision edge, genesis
	// revisions are copies rather than increments
	if m.ParentPipelineVersionRevision != nil {
		ctx.AddElement(m.ParentPipelineVersionRevision, false)
		ctx.AddRelation(revision, m.ParentPipelineVersionRevision, prov.Derivation, nil)
		ctx.AddRelation(creation, m.ParentPipelineVersionRevision, prov.Usage,
			timeAndRole(creation.Time, domain.RoleUsedParentPipelineVersionRevision))
	}

	// The created pipeline version
	version := revision.PipelineVersion
	ctx.AddElement(version, false)
	ctx.AddRelation(revision, version, prov.Specialization, nil)
	ctx.AddRelation(version, creation, prov.Generation,
		timeAndRole(creation.Time, domain.RoleCreatedPipelineVersion))

	// The parent pipeline version, reached through the parent creation
	if m.ParentPipelineVersionCreation != nil {
		parentVersion := m.ParentPipelineVersionCreation.PipelineVersionRevision.PipelineVersion
		ctx.AddElement(parentVersion, false)
		if m.ParentPipelineVersionRevision != nil {
			ctx.AddRelation(m.ParentPipelineVersionRevision, parentVersion, prov.Specialization, nil)
		}
		ctx.AddRelation(version, parentVersion, prov.Derivation, nil)
		ctx.AddRelation(creation, parentVersion, prov.Usage,
			timeAndRole(creation.Time, domain.RoleUsedParentPipelineVersion))
	}

	return ctx.Document
}
