package data

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
)

// changeEnvelope is the raw wire shape shared by all change records.
type changeEnvelope struct {
	UniqueID     string          `json:"uniqueID"`
	UpdateType   string          `json:"updateType"`
	OpID         int             `json:"opID"`
	OpName       string          `json:"opName"`
	OpData       map[string]any  `json:"opData"`
	ChangedParam string          `json:"changedParam"`
	ChangedVal   json.RawMessage `json:"changedVal"`
	ConID        int             `json:"conID"`
	FromOpID     int             `json:"fromOpID"`
	ToOpID       int             `json:"toOpID"`
	FromSockID   int             `json:"fromSockID"`
	ToSockID     int             `json:"toSockID"`
}

// stepEnvelope is the raw wire shape of a debug step record.
type stepEnvelope struct {
	UniqueStepID   string            `json:"uniqueStepID"`
	TimeStamp      float64           `json:"timeStamp"`
	BranchID       int               `json:"branchID"`
	StepID         int               `json:"stepID"`
	ParentBranchID *int              `json:"parentBranchID"`
	UniqueOpID     int               `json:"uniqueOpID"`
	OpName         string            `json:"opName"`
	StepType       string            `json:"stepType"`
	Metrics        []MetricData      `json:"metrics"`
	Updates        []json.RawMessage `json:"updates"`
}

// DecodePipelineChange decodes a single change record. Both snake- and
// pascal-case updateType spellings are accepted.
func DecodePipelineChange(raw []byte) (PipelineChangeData, error) {
	var envelope changeEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline change: %w", err)
	}

	changeType, err := domain.ParsePipelineChangeType(envelope.UpdateType)
	if err != nil {
		return nil, err
	}

	var change PipelineChangeData
	switch changeType {
	case domain.OperatorCreation:
		change = &OperatorCreationData{
			ID:           envelope.UniqueID,
			OperatorID:   envelope.OpID,
			OperatorName: envelope.OpName,
			OperatorData: envelope.OpData,
		}
	case domain.OperatorModification:
		var changedValue any
		if len(envelope.ChangedVal) > 0 {
			if err := json.Unmarshal(envelope.ChangedVal, &changedValue); err != nil {
				return nil, fmt.Errorf("failed to decode changedVal: %w", err)
			}
		}
		change = &OperatorModificationData{
			ID:               envelope.UniqueID,
			OperatorID:       envelope.OpID,
			OperatorName:     envelope.OpName,
			ChangedParameter: envelope.ChangedParam,
			ChangedValue:     changedValue,
		}
	case domain.OperatorDeletion:
		change = &OperatorDeletionData{
			ID:           envelope.UniqueID,
			OperatorID:   envelope.OpID,
			OperatorName: envelope.OpName,
		}
	case domain.ConnectionCreation:
		change = &ConnectionCreationData{
			ID:             envelope.UniqueID,
			ConnectionID:   envelope.ConID,
			FromOperatorID: envelope.FromOpID,
			ToOperatorID:   envelope.ToOpID,
			FromSocketID:   envelope.FromSockID,
			ToSocketID:     envelope.ToSockID,
		}
	case domain.ConnectionDeletion:
		change = &ConnectionDeletionData{
			ID:             envelope.UniqueID,
			ConnectionID:   envelope.ConID,
			FromOperatorID: envelope.FromOpID,
			ToOperatorID:   envelope.ToOpID,
			FromSocketID:   envelope.FromSockID,
			ToSocketID:     envelope.ToSockID,
		}
	}

	if err := validate.Struct(change); err != nil {
		return nil, fmt.Errorf("invalid %s change: %w", changeType, err)
	}

	return change, nil
}

// DecodeDebugStep decodes one debug step line. A missing metrics array and a
// null updates array both decode to nil, matching the distinction the
// translator makes between "no execution" and "no changes".
func DecodeDebugStep(raw []byte) (*DebugStepData, error) {
	var envelope stepEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode debug step: %w", err)
	}

	stepType, err := domain.ParseOperatorStepType(envelope.StepType)
	if err != nil {
		return nil, fmt.Errorf("debug step %s: %w", envelope.UniqueStepID, err)
	}

	var changes []PipelineChangeData
	if envelope.Updates != nil {
		changes = make([]PipelineChangeData, 0, len(envelope.Updates))
		for _, rawChange := range envelope.Updates {
			change, err := DecodePipelineChange(rawChange)
			if err != nil {
				return nil, fmt.Errorf("debug step %s: %w", envelope.UniqueStepID, err)
			}
			changes = append(changes, change)
		}
	}

	step := &DebugStepData{
		ID:                envelope.UniqueStepID,
		Timestamp:         envelope.TimeStamp,
		BranchID:          envelope.BranchID,
		BranchLocalStepID: envelope.StepID,
		ParentBranchID:    envelope.ParentBranchID,
		OperatorID:        envelope.UniqueOpID,
		OperatorName:      envelope.OpName,
		OperatorStepType:  stepType,
		OperatorMetrics:   envelope.Metrics,
		Changes:           changes,
	}

	if err := validate.Struct(step); err != nil {
		return nil, fmt.Errorf("invalid debug step %s: %w", envelope.UniqueStepID, err)
	}

	return step, nil
}

// EncodePipelineChange renders a change record in the wire format. The
// updateType is always emitted in its pascal-case spelling.
func EncodePipelineChange(change PipelineChangeData) ([]byte, error) {
	var payload map[string]any

	switch c := change.(type) {
	case *OperatorCreationData:
		payload = map[string]any{
			"uniqueID":   c.ID,
			"updateType": c.ChangeType().String(),
			"opID":       c.OperatorID,
			"opName":     c.OperatorName,
			"opData":     c.OperatorData,
		}
	case *OperatorModificationData:
		payload = map[string]any{
			"uniqueID":     c.ID,
			"updateType":   c.ChangeType().String(),
			"opID":         c.OperatorID,
			"opName":       c.OperatorName,
			"changedParam": c.ChangedParameter,
			"changedVal":   c.ChangedValue,
		}
	case *OperatorDeletionData:
		payload = map[string]any{
			"uniqueID":   c.ID,
			"updateType": c.ChangeType().String(),
			"opID":       c.OperatorID,
			"opName":     c.OperatorName,
		}
	case *ConnectionCreationData:
		payload = map[string]any{
			"uniqueID":   c.ID,
			"updateType": c.ChangeType().String(),
			"conID":      c.ConnectionID,
			"fromOpID":   c.FromOperatorID,
			"toOpID":     c.ToOperatorID,
			"fromSockID": c.FromSocketID,
			"toSockID":   c.ToSocketID,
		}
	case *ConnectionDeletionData:
		payload = map[string]any{
			"uniqueID":   c.ID,
			"updateType": c.ChangeType().String(),
			"conID":      c.ConnectionID,
			"fromOpID":   c.FromOperatorID,
			"toOpID":     c.ToOperatorID,
			"fromSockID": c.FromSocketID,
			"toSockID":   c.ToSocketID,
		}
	default:
		return nil, fmt.Errorf("unknown pipeline change data %T", change)
	}

	return json.Marshal(payload)
}

// EncodeDebugStep renders a debug step record in the wire format.
func EncodeDebugStep(step *DebugStepData) ([]byte, error) {
	metrics := step.OperatorMetrics
	if metrics == nil {
		metrics = []MetricData{}
	}

	var updates any
	if step.Changes != nil {
		encoded := make([]json.RawMessage, 0, len(step.Changes))
		for _, change := range step.Changes {
			raw, err := EncodePipelineChange(change)
			if err != nil {
				return nil, err
			}
			encoded = append(encoded, raw)
		}
		updates = encoded
	}

	return json.Marshal(map[string]any{
		"uniqueStepID":   step.ID,
		"timeStamp":      step.Timestamp,
		"branchID":       step.BranchID,
		"stepID":         step.BranchLocalStepID,
		"parentBranchID": step.ParentBranchID,
		"uniqueOpID":     step.OperatorID,
		"opName":         step.OperatorName,
		"stepType":       step.OperatorStepType.String(),
		"metrics":        metrics,
		"updates":        updates,
	})
}

// LoadInitData reads initialization change records, one JSON object per
// line. Blank lines are skipped.
func LoadInitData(r io.Reader) ([]PipelineChangeData, error) {
	var changes []PipelineChangeData

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		change, err := DecodePipelineChange(line)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read init data: %w", err)
	}

	return changes, nil
}

// LoadExecutionData reads debug step records, one JSON object per line.
// Blank lines are skipped.
func LoadExecutionData(r io.Reader) ([]*DebugStepData, error) {
	var steps []*DebugStepData

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		step, err := DecodeDebugStep(line)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read execution data: %w", err)
	}

	return steps, nil
}
