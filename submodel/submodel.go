// Package submodel contains the provenance sub-model builders: one pure
// builder per event shape, each producing a fresh PROV document fragment
// from a domain record and its relevant parents. Builders only borrow the
// records they are given; they never mutate them.
package submodel

import (
	"time"

	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// Model is a provenance sub-model builder.
type Model interface {
	Build() *prov.Document
}

// timeAndRole renders the attribute pair carried by generation, usage, and
// invalidation edges.
func timeAndRole(t time.Time, role string) []prov.Attribute {
	return []prov.Attribute{
		{Key: prov.AttrTime, Value: t},
		{Key: prov.AttrRole, Value: role},
	}
}

// addChangeActivity adds the triggering change activity and, if a parent
// activity exists, a communication edge from child to parent.
func addChangeActivity(ctx *prov.Context, change, parent *domain.PipelineChange) {
	ctx.AddElement(change, false)
	if parent != nil {
		ctx.AddElement(parent, false)
		ctx.AddRelation(change, parent, prov.Communication, nil)
	}
}

// addRevisionSnapshot adds the pipeline version revision affected by a
// change, with a membership edge per operator revision and connection, the
// generation edge to the change activity, the specialization edge to the
// pipeline version, and the revision and usage edges to the parent revision
// when one exists.
func addRevisionSnapshot(ctx *prov.Context, change *domain.PipelineChange, parentRevision *domain.PipelineVersionRevision) {
	revision := change.PipelineVersionRevision

	ctx.AddElement(revision, false)
	for _, operatorRevision := range revision.Operators {
		ctx.AddElement(operatorRevision, false)
		ctx.AddRelation(revision, operatorRevision, prov.Membership, nil)
	}
	for _, connection := range revision.Connections {
		ctx.AddElement(connection, false)
		ctx.AddRelation(revision, connection, prov.Membership, nil)
	}
	ctx.AddRelation(revision, change, prov.Generation,
		timeAndRole(change.Time, domain.RoleCreatedPipelineVersionRevision))

	ctx.AddElement(revision.PipelineVersion, false)
	ctx.AddRelation(revision, revision.PipelineVersion, prov.Specialization, nil)

	if parentRevision != nil {
		ctx.AddElement(parentRevision, false)
		ctx.AddRelation(revision, parentRevision, prov.Revision, nil)
		ctx.AddRelation(change, parentRevision, prov.Usage,
			timeAndRole(change.Time, domain.RoleUsedParentPipelineVersionRevision))
	}
}
