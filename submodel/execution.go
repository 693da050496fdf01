package submodel

import (
	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// OperatorExecutionModel is the provenance sub-model for the execution of an
// operator revision. Every metric of the produced run is a member of both
// the run and the executing operator revision.
type OperatorExecutionModel struct {
	OperatorExecution *domain.OperatorExecution
}

func (m *OperatorExecutionModel) Build() *prov.Document {
	ctx := prov.NewContext()
	execution := m.OperatorExecution

	ctx.AddElement(execution, false)

	operatorRevision := execution.OperatorRevision
	for _, parameter := range operatorRevision.Parameters {
		ctx.AddElement(parameter, false)
		ctx.AddRelation(operatorRevision, parameter, prov.Membership, nil)
	}
	ctx.AddElement(operatorRevision, false)
	ctx.AddRelation(execution, operatorRevision, prov.Usage,
		timeAndRole(execution.Time, domain.RoleUsedOperatorRevision))

	operatorRun := execution.OperatorRun
	ctx.AddElement(operatorRun, false)
	ctx.AddRelation(operatorRun, execution, prov.Generation,
		timeAndRole(execution.Time, domain.RoleCreatedOperatorRun))

	for _, metric := range operatorRun.Metrics {
		ctx.AddElement(metric, false)
		ctx.AddRelation(operatorRun, metric, prov.Membership, nil)
		ctx.AddRelation(operatorRevision, metric, prov.Membership, nil)
	}

	return ctx.Document
}
