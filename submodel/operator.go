package submodel

import (
	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// OperatorCreationModel is the provenance sub-model for the creation of an
// operator.
type OperatorCreationModel struct {
	PipelineChange                *domain.PipelineChange
	ParentPipelineChange          *domain.PipelineChange
	ParentPipelineVersionRevision *domain.PipelineVersionRevision
}

func (m *OperatorCreationModel) Build() *prov.Document {
	ctx := prov.NewContext()
	change := m.PipelineChange

	addChangeActivity(ctx, change, m.ParentPipelineChange)

	// The created operator revision, its generation, and the underlying
	// operator with specialization
	operatorRevision := change.OperatorRevision
	ctx.AddElement(operatorRevision, false)
	ctx.AddRelation(operatorRevision, change, prov.Generation,
		timeAndRole(change.Time, domain.RoleCreatedOperator))

	operator := operatorRevision.Operator
	ctx.AddElement(operator, false)
	ctx.AddRelation(operatorRevision, operator, prov.Specialization, nil)

	for _, parameter := range operatorRevision.Parameters {
		ctx.AddElement(parameter, false)
		ctx.AddRelation(operatorRevision, parameter, prov.Membership, nil)
	}

	addRevisionSnapshot(ctx, change, m.ParentPipelineVersionRevision)

	return ctx.Document
}

// OperatorModificationModel is the provenance sub-model for the modification
// of an operator's parameters. It additionally links the new operator
// revision to its parent revision.
type OperatorModificationModel struct {
	PipelineChange                *domain.PipelineChange
	ParentPipelineChange          *domain.PipelineChange
	ParentOperatorRevision        *domain.OperatorRevision
	ParentPipelineVersionRevision *domain.PipelineVersionRevision
}

func (m *OperatorModificationModel) Build() *prov.Document {
	ctx := prov.NewContext()
	change := m.PipelineChange

	addChangeActivity(ctx, change, m.ParentPipelineChange)

	operatorRevision := change.OperatorRevision
	ctx.AddElement(operatorRevision, false)
	ctx.AddRelation(operatorRevision, change, prov.Generation,
		timeAndRole(change.Time, domain.RoleModifiedOperator))

	if m.ParentOperatorRevision != nil {
		ctx.AddElement(m.ParentOperatorRevision, false)
		ctx.AddRelation(operatorRevision, m.ParentOperatorRevision, prov.Revision, nil)
		ctx.AddRelation(change, m.ParentOperatorRevision, prov.Usage,
			timeAndRole(change.Time, domain.RoleUsedParentOperatorRevision))
	}

	operator := operatorRevision.Operator
	ctx.AddElement(operator, false)
	ctx.AddRelation(operatorRevision, operator, prov.Specialization, nil)

	for _, parameter := range operatorRevision.Parameters {
		ctx.AddElement(parameter, false)
		ctx.AddRelation(operatorRevision, parameter, prov.Membership, nil)
	}

	addRevisionSnapshot(ctx, change, m.ParentPipelineVersionRevision)

	return ctx.Document
}

// OperatorDeletionModel is the provenance sub-model for the deletion of an
// operator. The deleted revision is invalidated by the change activity.
type OperatorDeletionModel struct {
	PipelineChange                *domain.PipelineChange
	ParentPipelineChange          *domain.PipelineChange
	ParentPipelineVersionRevision *domain.PipelineVersionRevision
}

func (m *OperatorDeletionModel) Build() *prov.Document {
	ctx := prov.NewContext()
	change := m.PipelineChange

	addChangeActivity(ctx, change, m.ParentPipelineChange)

	operatorRevision := change.OperatorRevision
	ctx.AddElement(operatorRevision, false)
	ctx.AddRelation(operatorRevision, change, prov.Invalidation,
		timeAndRole(change.Time, domain.RoleDeletedOperator))

	operator := operatorRevision.Operator
	ctx.AddElement(operator, false)
	ctx.AddRelation(operatorRevision, operator, prov.Specialization, nil)

	addRevisionSnapshot(ctx, change, m.ParentPipelineVersionRevision)

	return ctx.Document
}
