// Package provinspector reconstructs a W3C PROV provenance graph from the
// live event stream of the StreamVizzard pipeline debugger. The ProvInspector
// translator maintains the in-memory genealogy of pipeline versions, pipeline
// version revisions, operators and operator revisions as events arrive,
// selects the provenance sub-model each event maps to, and merges the
// resulting fragment into a Bolt-reachable property graph.
package provinspector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/streamvizzard-provinspector/common"
	"github.com/dbis-ilm/streamvizzard-provinspector/data"
	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
	"github.com/dbis-ilm/streamvizzard-provinspector/storage"
	"github.com/dbis-ilm/streamvizzard-provinspector/submodel"
)

// Config carries the initial constants of the translator: the ids and
// timestamp of the genesis branch.
type Config struct {
	InitialPipelineVersionID         int
	InitialPipelineVersionRevisionID int
	InitialOperatorRevisionID        int
	InitialTime                      time.Time
}

// DefaultConfig returns the canonical initial constants: branch 0, revision
// 0, operator revision 0, at the zero epoch.
func DefaultConfig() Config {
	return Config{
		InitialPipelineVersionID:         0,
		InitialPipelineVersionRevisionID: 0,
		InitialOperatorRevisionID:        0,
		InitialTime:                      time.Unix(0, 0),
	}
}

// ProvInspector is the stateful event-to-provenance translator. It consumes
// initialization and debug-step records, updates the object repository, and
// hands the built provenance fragments to the graph database.
//
// The translator is single-threaded cooperative: callers serialize
// Initialize and Update, and feed events in the order the debugger emits
// them. Out-of-order delivery silently produces an incorrect but well-formed
// graph.
type ProvInspector struct {
	database   *storage.ProvGraphDatabase
	repository *storage.InMemoryRepository
	config     Config
	log        *logrus.Entry

	initialized bool

	lastPipelineVersionID         int
	lastPipelineVersionRevisionID int
}

// New returns a translator over the given graph database with the default
// initial constants.
func New(database *storage.ProvGraphDatabase) *ProvInspector {
	return NewWithConfig(database, DefaultConfig())
}

// NewWithConfig returns a translator with explicit initial constants.
func NewWithConfig(database *storage.ProvGraphDatabase, config Config) *ProvInspector {
	return &ProvInspector{
		database:                      database,
		repository:                    storage.NewInMemoryRepository(),
		config:                        config,
		log:                           common.ServiceLogger("provinspector", nil),
		lastPipelineVersionID:         config.InitialPipelineVersionID,
		lastPipelineVersionRevisionID: config.InitialPipelineVersionRevisionID,
	}
}

// Repository exposes the object repository, primarily for tests.
func (p *ProvInspector) Repository() *storage.InMemoryRepository {
	return p.repository
}

// Shutdown releases the graph database.
func (p *ProvInspector) Shutdown(ctx context.Context) error {
	return p.database.Shutdown(ctx)
}

// Clear resets the translator for a debugger restart: the object repository
// and the backing graph are emptied and the translator returns to the
// uninitialized state.
func (p *ProvInspector) Clear(ctx context.Context) error {
	p.repository.Clear()
	if err := p.database.Clear(ctx); err != nil {
		return err
	}

	p.initialized = false
	p.lastPipelineVersionID = p.config.InitialPipelineVersionID
	p.lastPipelineVersionRevisionID = p.config.InitialPipelineVersionRevisionID

	return nil
}

// Query passes a query string through to the backing store.
func (p *ProvInspector) Query(ctx context.Context, cypher string) (*storage.Cursor, error) {
	return p.database.Query(ctx, cypher)
}

// addModel builds a provenance sub-model fragment and merges it into the
// graph.
func (p *ProvInspector) addModel(ctx context.Context, model submodel.Model) error {
	return p.database.ImportGraph(ctx, model.Build())
}

// stepTime converts an epoch-seconds event timestamp to a time.Time.
func stepTime(timestamp float64) time.Time {
	seconds := int64(timestamp)
	nanos := int64((timestamp - float64(seconds)) * float64(time.Second))
	return time.Unix(seconds, nanos)
}

// Initialize constructs the genesis branch from the pipeline's initial
// change records: operator creations and connection creations are collected
// into the genesis revision, all other change kinds are ignored. Calling
// Initialize again once initialized is a recoverable warning, not an error.
func (p *ProvInspector) Initialize(ctx context.Context, changes []data.PipelineChangeData) error {
	if p.initialized {
		p.log.Warn("already initialized")
		return nil
	}

	var operators []*domain.OperatorRevision
	var connections []*domain.Connection

	for _, change := range changes {
		switch change := change.(type) {
		case *data.OperatorCreationData:
			operators = append(operators, p.newOperatorRevision(change))
		case *data.ConnectionCreationData:
			connections = append(connections, &domain.Connection{
				ID:             change.ConnectionID,
				FromOperatorID: change.FromOperatorID,
				ToOperatorID:   change.ToOperatorID,
			})
		}
	}

	pipelineVersion := &domain.PipelineVersion{
		ID: p.config.InitialPipelineVersionID,
	}
	revision := &domain.PipelineVersionRevision{
		UUID:            uuid.NewString(),
		ID:              p.config.InitialPipelineVersionRevisionID,
		PipelineVersion: pipelineVersion,
		Operators:       operators,
		Connections:     connections,
	}
	creation := &domain.PipelineVersionCreation{
		UUID:                    uuid.NewString(),
		PipelineVersionRevision: revision,
		Time:                    p.config.InitialTime,
	}

	p.repository.Add(pipelineVersion)
	p.repository.Add(revision)
	p.repository.Add(creation)

	if err := p.addModel(ctx, &submodel.PipelineVersionCreationModel{
		PipelineVersionCreation: creation,
	}); err != nil {
		return fmt.Errorf("failed to initialize provenance graph: %w", err)
	}

	p.initialized = true
	return nil
}

// newOperatorRevision constructs the initial revision of a freshly created
// operator.
func (p *ProvInspector) newOperatorRevision(change *data.OperatorCreationData) *domain.OperatorRevision {
	operator := &domain.Operator{
		ID:   change.OperatorID,
		Name: change.OperatorName,
	}

	parameters := make([]*domain.Parameter, 0, len(change.OperatorData))
	for name, value := range change.OperatorData {
		parameters = append(parameters, &domain.Parameter{Name: name, Value: value})
	}

	return &domain.OperatorRevision{
		UUID:       uuid.NewString(),
		ID:         p.config.InitialOperatorRevisionID,
		Operator:   operator,
		Parameters: parameters,
	}
}

// Update consumes one debug step: it resolves the step's branch (creating a
// new branch when the step names an unknown one), applies the step's
// pipeline changes, and records the operator execution when the step carries
// metrics. Failures abort the current event only; prior state is preserved.
func (p *ProvInspector) Update(ctx context.Context, step *data.DebugStepData) error {
	eventTime := stepTime(step.Timestamp)

	pipelineVersion, parentRevision, err := p.resolveBranch(ctx, step, eventTime)
	if err != nil {
		return fmt.Errorf("debug step %s: %w", step.ID, err)
	}

	p.lastPipelineVersionID = pipelineVersion.ID
	p.lastPipelineVersionRevisionID = parentRevision.ID

	for _, change := range step.Changes {
		if err := p.applyChange(ctx, change, parentRevision, eventTime); err != nil {
			return fmt.Errorf("debug step %s: %w", step.ID, err)
		}
	}

	if len(step.OperatorMetrics) > 0 {
		if err := p.applyExecution(ctx, step, parentRevision, eventTime); err != nil {
			return fmt.Errorf("debug step %s: %w", step.ID, err)
		}
	}

	return nil
}

// resolveBranch locates the pipeline version and parent revision the step
// applies to. Unknown branch ids give birth to a new branch whose genesis
// revision copies the parent branch's latest snapshot.
func (p *ProvInspector) resolveBranch(ctx context.Context, step *data.DebugStepData, eventTime time.Time) (*domain.PipelineVersion, *domain.PipelineVersionRevision, error) {
	// An update before any initialization bootstraps an empty genesis branch.
	if !p.initialized && len(p.repository.PipelineVersions()) == 0 {
		pipelineVersion := &domain.PipelineVersion{ID: p.config.InitialPipelineVersionID}
		revision := &domain.PipelineVersionRevision{
			UUID:            uuid.NewString(),
			ID:              p.config.InitialPipelineVersionRevisionID,
			PipelineVersion: pipelineVersion,
		}
		creation := &domain.PipelineVersionCreation{
			UUID:                    uuid.NewString(),
			PipelineVersionRevision: revision,
			Time:                    eventTime,
		}

		p.repository.Add(pipelineVersion)
		p.repository.Add(revision)
		p.repository.Add(creation)

		if err := p.addModel(ctx, &submodel.PipelineVersionCreationModel{
			PipelineVersionCreation: creation,
		}); err != nil {
			return nil, nil, err
		}

		return pipelineVersion, revision, nil
	}

	pipelineVersion := p.repository.PipelineVersionByID(step.BranchID)
	if pipelineVersion != nil {
		var parentRevision *domain.PipelineVersionRevision
		if p.lastPipelineVersionID == step.BranchID {
			parentRevision = p.repository.PipelineVersionRevisionByID(pipelineVersion, p.lastPipelineVersionRevisionID)
		} else {
			parentRevision = p.repository.LastPipelineVersionRevision(pipelineVersion)
		}
		if parentRevision == nil {
			return nil, nil, fmt.Errorf("branch %d has no revisions", step.BranchID)
		}
		return pipelineVersion, parentRevision, nil
	}

	// Branch birth: the step names an unknown branch forked off its parent
	if step.ParentBranchID == nil {
		return nil, nil, fmt.Errorf("unknown branch %d without parent branch", step.BranchID)
	}
	parentVersion := p.repository.PipelineVersionByID(*step.ParentBranchID)
	if parentVersion == nil {
		return nil, nil, fmt.Errorf("unknown parent branch %d", *step.ParentBranchID)
	}
	branchPoint := p.repository.LastPipelineVersionRevision(parentVersion)
	if branchPoint == nil {
		return nil, nil, fmt.Errorf("parent branch %d has no revisions", *step.ParentBranchID)
	}

	parentID := parentVersion.ID
	pipelineVersion = &domain.PipelineVersion{
		ID:                      step.BranchID,
		ParentPipelineVersionID: &parentID,
	}
	// The genesis revision of the new branch copies the branch point's
	// snapshot
	revision := &domain.PipelineVersionRevision{
		UUID:                              uuid.NewString(),
		ID:                                p.config.InitialPipelineVersionRevisionID,
		PipelineVersion:                   pipelineVersion,
		ParentPipelineVersionRevisionUUID: branchPoint.UUID,
		Operators:                         branchPoint.Operators,
		Connections:                       branchPoint.Connections,
	}

	parentCreation := p.repository.PipelineVersionCreationByVersion(parentVersion)
	creation := &domain.PipelineVersionCreation{
		UUID:                    uuid.NewString(),
		PipelineVersionRevision: revision,
		Time:                    eventTime,
	}
	if parentCreation != nil {
		creation.ParentPipelineVersionCreationUUID = parentCreation.UUID
	}

	p.repository.Add(pipelineVersion)
	p.repository.Add(revision)
	p.repository.Add(creation)

	if err := p.addModel(ctx, &submodel.PipelineVersionCreationModel{
		PipelineVersionCreation:       creation,
		ParentPipelineVersionRevision: branchPoint,
		ParentPipelineVersionCreation: parentCreation,
	}); err != nil {
		return nil, nil, err
	}

	return pipelineVersion, revision, nil
}

// nextRevision constructs the successor of the parent revision with the
// given member sets.
func nextRevision(parent *domain.PipelineVersionRevision, operators []*domain.OperatorRevision, connections []*domain.Connection) *domain.PipelineVersionRevision {
	return &domain.PipelineVersionRevision{
		UUID:                              uuid.NewString(),
		ID:                                parent.ID + 1,
		PipelineVersion:                   parent.PipelineVersion,
		ParentPipelineVersionRevisionUUID: parent.UUID,
		Operators:                         operators,
		Connections:                       connections,
	}
}

// applyChange constructs the revision and change records for one pipeline
// change and runs the matching sub-model builder.
func (p *ProvInspector) applyChange(ctx context.Context, changeData data.PipelineChangeData, parentRevision *domain.PipelineVersionRevision, eventTime time.Time) error {
	parentChange := p.repository.LastPipelineChange(parentRevision)
	parentChangeUUID := ""
	if parentChange != nil {
		parentChangeUUID = parentChange.UUID
	}

	switch changeData := changeData.(type) {
	case *data.OperatorCreationData:
		operatorRevision := p.newOperatorRevision(changeData)

		// The member slice is shared with the parent revision: the
		// remaining changes of this step observe the new operator
		parentRevision.Operators = append(parentRevision.Operators, operatorRevision)
		revision := nextRevision(parentRevision, parentRevision.Operators, parentRevision.Connections)

		change := &domain.PipelineChange{
			UUID:                     uuid.NewString(),
			Type:                     domain.OperatorCreation,
			Time:                     eventTime,
			OperatorRevision:         operatorRevision,
			PipelineVersionRevision:  revision,
			ParentPipelineChangeUUID: parentChangeUUID,
		}

		p.repository.Add(operatorRevision.Operator)
		p.repository.Add(operatorRevision)
		p.repository.Add(revision)
		p.repository.Add(change)

		return p.addModel(ctx, &submodel.OperatorCreationModel{
			PipelineChange:                change,
			ParentPipelineChange:          parentChange,
			ParentPipelineVersionRevision: parentRevision,
		})

	case *data.OperatorModificationData:
		parentOperatorRevision := lastOperatorRevision(parentRevision.Operators, changeData.OperatorID)
		if parentOperatorRevision == nil {
			return fmt.Errorf("operator %d not in pipeline", changeData.OperatorID)
		}

		// The parent's parameter list with the changed name replaced
		parameters := make([]*domain.Parameter, 0, len(parentOperatorRevision.Parameters)+1)
		for _, parameter := range parentOperatorRevision.Parameters {
			if parameter.Name != changeData.ChangedParameter {
				parameters = append(parameters, &domain.Parameter{Name: parameter.Name, Value: parameter.Value})
			}
		}
		parameters = append(parameters, &domain.Parameter{
			Name:  changeData.ChangedParameter,
			Value: changeData.ChangedValue,
		})

		operatorRevision := &domain.OperatorRevision{
			UUID:                       uuid.NewString(),
			ID:                         parentOperatorRevision.ID + 1,
			Operator:                   parentOperatorRevision.Operator,
			Parameters:                 parameters,
			ParentOperatorRevisionUUID: parentOperatorRevision.UUID,
		}

		// Appended without removing the superseded revision; both revisions
		// of the operator coexist in the member set
		parentRevision.Operators = append(parentRevision.Operators, operatorRevision)
		revision := nextRevision(parentRevision, parentRevision.Operators, parentRevision.Connections)

		change := &domain.PipelineChange{
			UUID:                     uuid.NewString(),
			Type:                     domain.OperatorModification,
			Time:                     eventTime,
			OperatorRevision:         operatorRevision,
			PipelineVersionRevision:  revision,
			ParentPipelineChangeUUID: parentChangeUUID,
		}

		p.repository.Add(operatorRevision)
		p.repository.Add(revision)
		p.repository.Add(change)

		return p.addModel(ctx, &submodel.OperatorModificationModel{
			PipelineChange:                change,
			ParentPipelineChange:          parentChange,
			ParentOperatorRevision:        parentOperatorRevision,
			ParentPipelineVersionRevision: parentRevision,
		})

	case *data.OperatorDeletionData:
		index := firstOperatorRevisionIndex(parentRevision.Operators, changeData.OperatorID)
		if index < 0 {
			return fmt.Errorf("operator %d not in pipeline", changeData.OperatorID)
		}
		operatorRevision := parentRevision.Operators[index]

		parentRevision.Operators = append(parentRevision.Operators[:index], parentRevision.Operators[index+1:]...)
		revision := nextRevision(parentRevision, parentRevision.Operators, parentRevision.Connections)

		change := &domain.PipelineChange{
			UUID:                     uuid.NewString(),
			Type:                     domain.OperatorDeletion,
			Time:                     eventTime,
			OperatorRevision:         operatorRevision,
			PipelineVersionRevision:  revision,
			ParentPipelineChangeUUID: parentChangeUUID,
		}

		p.repository.Add(revision)
		p.repository.Add(change)

		return p.addModel(ctx, &submodel.OperatorDeletionModel{
			PipelineChange:                change,
			ParentPipelineChange:          parentChange,
			ParentPipelineVersionRevision: parentRevision,
		})

	case *data.ConnectionCreationData:
		connection := &domain.Connection{
			ID:             changeData.ConnectionID,
			FromOperatorID: changeData.FromOperatorID,
			ToOperatorID:   changeData.ToOperatorID,
		}

		parentRevision.Connections = append(parentRevision.Connections, connection)
		revision := nextRevision(parentRevision, parentRevision.Operators, parentRevision.Connections)

		change := &domain.PipelineChange{
			UUID:                     uuid.NewString(),
			Type:                     domain.ConnectionCreation,
			Time:                     eventTime,
			Connection:               connection,
			PipelineVersionRevision:  revision,
			ParentPipelineChangeUUID: parentChangeUUID,
		}

		p.repository.Add(connection)
		p.repository.Add(revision)
		p.repository.Add(change)

		return p.addModel(ctx, &submodel.ConnectionCreationModel{
			PipelineChange:                change,
			ParentPipelineChange:          parentChange,
			ParentPipelineVersionRevision: parentRevision,
		})

	case *data.ConnectionDeletionData:
		connection := &domain.Connection{
			ID:             changeData.ConnectionID,
			FromOperatorID: changeData.FromOperatorID,
			ToOperatorID:   changeData.ToOperatorID,
		}

		// Appended rather than removed; the deleted connection stays in the
		// member set and is marked by the invalidation edge
		parentRevision.Connections = append(parentRevision.Connections, connection)
		revision := nextRevision(parentRevision, parentRevision.Operators, parentRevision.Connections)

		change := &domain.PipelineChange{
			UUID:                     uuid.NewString(),
			Type:                     domain.ConnectionDeletion,
			Time:                     eventTime,
			Connection:               connection,
			PipelineVersionRevision:  revision,
			ParentPipelineChangeUUID: parentChangeUUID,
		}

		p.repository.Add(connection)
		p.repository.Add(revision)
		p.repository.Add(change)

		return p.addModel(ctx, &submodel.ConnectionDeletionModel{
			PipelineChange:                change,
			ParentPipelineChange:          parentChange,
			ParentPipelineVersionRevision: parentRevision,
		})
	}

	return fmt.Errorf("unknown pipeline change data %T", changeData)
}

// applyExecution records an operator run with its metrics against the
// operator revision executing in the step's parent revision.
func (p *ProvInspector) applyExecution(ctx context.Context, step *data.DebugStepData, parentRevision *domain.PipelineVersionRevision, eventTime time.Time) error {
	operatorRevision := firstOperatorRevision(parentRevision.Operators, step.OperatorID)
	if operatorRevision == nil {
		return fmt.Errorf("operator %d not in pipeline", step.OperatorID)
	}

	metrics := make([]*domain.Metric, 0, len(step.OperatorMetrics))
	for _, metric := range step.OperatorMetrics {
		metrics = append(metrics, &domain.Metric{Name: metric.Name, Value: metric.Value})
	}

	operatorRun := &domain.OperatorRun{
		ID:        uuid.NewString(),
		CreatedAt: eventTime,
		Metrics:   metrics,
	}
	execution := &domain.OperatorExecution{
		UUID:             uuid.NewString(),
		OperatorRevision: operatorRevision,
		OperatorRun:      operatorRun,
		StepType:         step.OperatorStepType,
		Time:             eventTime,
	}

	p.repository.Add(operatorRun)
	p.repository.Add(execution)

	return p.addModel(ctx, &submodel.OperatorExecutionModel{
		OperatorExecution: execution,
	})
}

// firstOperatorRevision returns the first revision of the given operator in
// the member set, or nil.
func firstOperatorRevision(operators []*domain.OperatorRevision, operatorID int) *domain.OperatorRevision {
	for _, revision := range operators {
		if revision.Operator != nil && revision.Operator.ID == operatorID {
			return revision
		}
	}
	return nil
}

// firstOperatorRevisionIndex returns the index of the first revision of the
// given operator in the member set, or -1.
func firstOperatorRevisionIndex(operators []*domain.OperatorRevision, operatorID int) int {
	for i, revision := range operators {
		if revision.Operator != nil && revision.Operator.ID == operatorID {
			return i
		}
	}
	return -1
}

// lastOperatorRevision returns the most recent revision of the given
// operator in the member set, or nil. The member set accumulates revisions,
// so the last match is the operator's current configuration.
func lastOperatorRevision(operators []*domain.OperatorRevision, operatorID int) *domain.OperatorRevision {
	for i := len(operators) - 1; i >= 0; i-- {
		if operators[i].Operator != nil && operators[i].Operator.ID == operatorID {
			return operators[i]
		}
	}
	return nil
}
