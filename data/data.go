// Package data defines the wire-level event records emitted by the
// StreamVizzard debugger and consumed by the provenance translator, plus the
// JSON line codec for dump files and message payloads.
package data

import (
	"github.com/go-playground/validator/v10"

	"github.com/dbis-ilm/streamvizzard-provinspector/domain"
)

// validate checks decoded wire records before they reach the translator.
var validate = validator.New()

// PipelineChangeData is implemented by the five pipeline change payloads.
type PipelineChangeData interface {
	// ChangeID is the unique id the debugger assigned to the change event.
	ChangeID() string
	// ChangeType discriminates the payload.
	ChangeType() domain.PipelineChangeType
}

// OperatorCreationData is the payload of an operator creation change.
type OperatorCreationData struct {
	ID           string         `validate:"required"`
	OperatorID   int
	OperatorName string         `validate:"required"`
	OperatorData map[string]any
}

func (d *OperatorCreationData) ChangeID() string { return d.ID }

func (d *OperatorCreationData) ChangeType() domain.PipelineChangeType {
	return domain.OperatorCreation
}

// OperatorModificationData is the payload of an operator parameter change.
type OperatorModificationData struct {
	ID               string `validate:"required"`
	OperatorID       int
	OperatorName     string `validate:"required"`
	ChangedParameter string `validate:"required"`
	ChangedValue     any
}

func (d *OperatorModificationData) ChangeID() string { return d.ID }

func (d *OperatorModificationData) ChangeType() domain.PipelineChangeType {
	return domain.OperatorModification
}

// OperatorDeletionData is the payload of an operator deletion change.
type OperatorDeletionData struct {
	ID           string `validate:"required"`
	OperatorID   int
	OperatorName string
}

func (d *OperatorDeletionData) ChangeID() string { return d.ID }

func (d *OperatorDeletionData) ChangeType() domain.PipelineChangeType {
	return domain.OperatorDeletion
}

// ConnectionCreationData is the payload of a connection creation change.
type ConnectionCreationData struct {
	ID             string `validate:"required"`
	ConnectionID   int
	FromOperatorID int
	ToOperatorID   int
	FromSocketID   int
	ToSocketID     int
}

func (d *ConnectionCreationData) ChangeID() string { return d.ID }

func (d *ConnectionCreationData) ChangeType() domain.PipelineChangeType {
	return domain.ConnectionCreation
}

// ConnectionDeletionData is the payload of a connection deletion change.
type ConnectionDeletionData struct {
	ID             string `validate:"required"`
	ConnectionID   int
	FromOperatorID int
	ToOperatorID   int
	FromSocketID   int
	ToSocketID     int
}

func (d *ConnectionDeletionData) ChangeID() string { return d.ID }

func (d *ConnectionDeletionData) ChangeType() domain.PipelineChangeType {
	return domain.ConnectionDeletion
}

// MetricData is one metric sample attached to a debug step.
type MetricData struct {
	Name  string  `json:"name" validate:"required"`
	Value float64 `json:"value"`
}

// DebugStepData carries the fields of a debug step relevant for the
// provenance translator. OperatorMetrics and Changes distinguish between
// absent (nil) and present-but-empty.
type DebugStepData struct {
	ID                string `validate:"required"`
	Timestamp         float64
	BranchID          int
	BranchLocalStepID int
	ParentBranchID    *int
	OperatorID        int
	OperatorName      string
	OperatorStepType  domain.OperatorStepType `validate:"required"`
	OperatorMetrics   []MetricData
	Changes           []PipelineChangeData
}
