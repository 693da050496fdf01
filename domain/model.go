package domain

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strconv"
	"time"

	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

// PipelineVersion is an entity representing a version of the pipeline.
//
// A PipelineVersion originates from a history split and represents a history
// branch. A pipeline initially has one version that represents the original
// execution branch.
type PipelineVersion struct {
	ID                      int
	ParentPipelineVersionID *int
}

func (v *PipelineVersion) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("PipelineVersion?id=%s", url.QueryEscape(strconv.Itoa(v.ID))))
}

func (v *PipelineVersion) ToProv() *prov.Element {
	return prov.NewEntity(v.ProvIdentifier(), []prov.Attribute{
		{Key: "id", Value: v.ID},
		{Key: prov.AttrType, Value: TypePipelineVersion},
	})
}

// PipelineVersionRevision is an entity representing a revision of a pipeline
// version.
//
// A PipelineVersionRevision originates from a change to a pipeline version,
// such as the creation or deletion of an operator, the modification of an
// operator's parameters, or the creation or deletion of a connection. It is a
// snapshot of the respective pipeline and comprises all corresponding
// OperatorRevisions and Connections.
//
// The member slices are shared with the parent revision on purpose: change
// application appends to (or removes from) the parent's slice, so later
// changes within the same debug step observe earlier ones.
type PipelineVersionRevision struct {
	UUID                              string
	ID                                int
	PipelineVersion                   *PipelineVersion
	ParentPipelineVersionRevisionUUID string
	Operators                         []*OperatorRevision
	Connections                       []*Connection
}

func (r *PipelineVersionRevision) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("PipelineVersionRevision?uuid=%s", url.QueryEscape(r.UUID)))
}

func (r *PipelineVersionRevision) ToProv() *prov.Element {
	return prov.NewEntity(r.ProvIdentifier(), []prov.Attribute{
		{Key: "uuid", Value: r.UUID},
		{Key: "id", Value: r.ID},
		{Key: prov.AttrType, Value: TypePipelineVersionRevision},
	})
}

// Operator is an entity representing an operator of a pipeline. An Operator
// initially has one revision.
type Operator struct {
	ID   int
	Name string
}

func (o *Operator) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("Operator?id=%s", url.QueryEscape(strconv.Itoa(o.ID))))
}

func (o *Operator) ToProv() *prov.Element {
	return prov.NewEntity(o.ProvIdentifier(), []prov.Attribute{
		{Key: "id", Value: o.ID},
		{Key: "name", Value: o.Name},
		{Key: prov.AttrType, Value: TypeOperator},
	})
}

// OperatorRevision is an entity representing a revision of an operator: a
// snapshot of the operator's parameter configuration.
type OperatorRevision struct {
	UUID                       string
	ID                         int
	Operator                   *Operator
	Parameters                 []*Parameter
	ParentOperatorRevisionUUID string
}

func (r *OperatorRevision) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("OperatorRevision?uuid=%s", url.QueryEscape(r.UUID)))
}

func (r *OperatorRevision) ToProv() *prov.Element {
	return prov.NewEntity(r.ProvIdentifier(), []prov.Attribute{
		{Key: "uuid", Value: r.UUID},
		{Key: "id", Value: r.ID},
		{Key: prov.AttrType, Value: TypeOperatorRevision},
	})
}

// Parameter is an entity representing a parameter of an operator.
type Parameter struct {
	Name  string
	Value any
}

// ValueHash returns the stable content hash of the parameter value used in
// the parameter's identity. The canonical string rendering of the value is
// hashed with FNV-1a so identifiers survive process restarts.
func (p *Parameter) ValueHash() int64 {
	h := fnv.New64a()
	h.Write([]byte(canonicalValue(p.Value)))
	return int64(h.Sum64())
}

func canonicalValue(v any) string {
	switch value := v.(type) {
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func (p *Parameter) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("Parameter?name=%s&value=%d", url.QueryEscape(p.Name), p.ValueHash()))
}

func (p *Parameter) ToProv() *prov.Element {
	return prov.NewEntity(p.ProvIdentifier(), []prov.Attribute{
		{Key: "name", Value: p.Name},
		{Key: "value", Value: p.ValueHash()},
		{Key: prov.AttrType, Value: TypeParameter},
	})
}

// OperatorRun is an entity representing the collection of metrics generated
// by one execution of an OperatorRevision.
type OperatorRun struct {
	ID        string
	CreatedAt time.Time
	Metrics   []*Metric
}

func (r *OperatorRun) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("OperatorRun?id=%s", url.QueryEscape(r.ID)))
}

func (r *OperatorRun) ToProv() *prov.Element {
	return prov.NewEntity(r.ProvIdentifier(), []prov.Attribute{
		{Key: "id", Value: r.ID},
		{Key: "time", Value: r.CreatedAt},
		{Key: prov.AttrType, Value: TypeOperatorRun},
		{Key: prov.AttrType, Value: TypeCollection},
	})
}

// Metric is an entity representing a metric created by a run of an operator
// revision.
type Metric struct {
	Name  string
	Value float64
}

func (m *Metric) ProvIdentifier() prov.QualifiedName {
	value := strconv.FormatFloat(m.Value, 'g', -1, 64)
	return prov.QualifiedNameOf(fmt.Sprintf("Metric?name=%s&value=%s", url.QueryEscape(m.Name), value))
}

func (m *Metric) ToProv() *prov.Element {
	return prov.NewEntity(m.ProvIdentifier(), []prov.Attribute{
		{Key: "name", Value: m.Name},
		{Key: "value", Value: m.Value},
		{Key: prov.AttrType, Value: TypeMetric},
	})
}

// Connection is an entity representing the connection between two operators.
type Connection struct {
	ID             int
	FromOperatorID int
	ToOperatorID   int
}

func (c *Connection) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("Connection?id=%s", url.QueryEscape(strconv.Itoa(c.ID))))
}

func (c *Connection) ToProv() *prov.Element {
	return prov.NewEntity(c.ProvIdentifier(), []prov.Attribute{
		{Key: "id", Value: c.ID},
		{Key: "from_operator_id", Value: strconv.Itoa(c.FromOperatorID)},
		{Key: "to_operator_id", Value: strconv.Itoa(c.ToOperatorID)},
		{Key: prov.AttrType, Value: TypeConnection},
	})
}

// PipelineVersionCreation is an activity representing the creation of a
// pipeline version, i.e. the birth of a branch.
type PipelineVersionCreation struct {
	UUID                              string
	PipelineVersionRevision           *PipelineVersionRevision
	ParentPipelineVersionCreationUUID string
	Time                              time.Time
}

func (c *PipelineVersionCreation) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("PipelineVersionCreation?uuid=%s", url.QueryEscape(c.UUID)))
}

func (c *PipelineVersionCreation) ToProv() *prov.Element {
	return prov.NewActivity(c.ProvIdentifier(), []prov.Attribute{
		{Key: "uuid", Value: c.UUID},
		{Key: prov.AttrStartTime, Value: c.Time},
		{Key: prov.AttrEndTime, Value: c.Time},
		{Key: prov.AttrType, Value: TypePipelineVersionCreation},
	})
}

// PipelineChange is an activity representing a change between two
// PipelineVersionRevisions of a PipelineVersion. The change type
// discriminates the payload: the operator subtypes carry an
// OperatorRevision, the connection subtypes carry a Connection.
type PipelineChange struct {
	UUID                     string
	Type                     PipelineChangeType
	Time                     time.Time
	OperatorRevision         *OperatorRevision
	Connection               *Connection
	PipelineVersionRevision  *PipelineVersionRevision
	ParentPipelineChangeUUID string
}

func (c *PipelineChange) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("PipelineChange?uuid=%s", url.QueryEscape(c.UUID)))
}

func (c *PipelineChange) ToProv() *prov.Element {
	return prov.NewActivity(c.ProvIdentifier(), []prov.Attribute{
		{Key: "uuid", Value: c.UUID},
		{Key: "pipeline_change_type", Value: c.Type.String()},
		{Key: prov.AttrStartTime, Value: c.Time},
		{Key: prov.AttrEndTime, Value: c.Time},
		{Key: prov.AttrType, Value: TypePipelineChange},
	})
}

// OperatorExecution is an activity representing the execution of an
// OperatorRevision, producing an OperatorRun.
type OperatorExecution struct {
	UUID             string
	OperatorRevision *OperatorRevision
	OperatorRun      *OperatorRun
	StepType         OperatorStepType
	Time             time.Time
}

func (e *OperatorExecution) ProvIdentifier() prov.QualifiedName {
	return prov.QualifiedNameOf(fmt.Sprintf("OperatorExecution?uuid=%s", url.QueryEscape(e.UUID)))
}

func (e *OperatorExecution) ToProv() *prov.Element {
	return prov.NewActivity(e.ProvIdentifier(), []prov.Attribute{
		{Key: "uuid", Value: e.UUID},
		{Key: "pipeline_change_type", Value: e.StepType.String()},
		{Key: prov.AttrStartTime, Value: e.Time},
		{Key: prov.AttrEndTime, Value: e.Time},
		{Key: prov.AttrType, Value: TypeOperatorExecution},
	})
}
