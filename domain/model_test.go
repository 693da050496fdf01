package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dbis-ilm/streamvizzard-provinspector/prov"
)

func TestProvIdentifiers(t *testing.T) {
	t.Run("identifiers are pure functions of the semantic key", func(t *testing.T) {
		first := &PipelineVersion{ID: 3}
		second := &PipelineVersion{ID: 3, ParentPipelineVersionID: new(int)}

		assert.Equal(t, first.ProvIdentifier(), second.ProvIdentifier())
		assert.Equal(t, "PipelineVersion?id=3", first.ProvIdentifier().String())
	})

	t.Run("revision identifiers are keyed by uuid", func(t *testing.T) {
		revision := &PipelineVersionRevision{UUID: "abc-123", ID: 7}
		assert.Equal(t, "PipelineVersionRevision?uuid=abc-123", revision.ProvIdentifier().String())
	})

	t.Run("identifiers are url safe", func(t *testing.T) {
		parameter := &Parameter{Name: "learning rate", Value: 0.1}
		assert.Contains(t, parameter.ProvIdentifier().String(), "name=learning+rate")

		operator := &Operator{ID: 12, Name: "map & filter"}
		assert.Equal(t, "Operator?id=12", operator.ProvIdentifier().String())
	})

	t.Run("metric identifiers carry the value", func(t *testing.T) {
		metric := &Metric{Name: "loss", Value: 0.7}
		assert.Equal(t, "Metric?name=loss&value=0.7", metric.ProvIdentifier().String())
	})
}

func TestParameterValueHash(t *testing.T) {
	t.Run("hash is stable for equal values", func(t *testing.T) {
		first := &Parameter{Name: "lr", Value: 0.1}
		second := &Parameter{Name: "lr", Value: 0.1}

		assert.Equal(t, first.ValueHash(), second.ValueHash())
		assert.Equal(t, first.ProvIdentifier(), second.ProvIdentifier())
	})

	t.Run("hash distinguishes values", func(t *testing.T) {
		first := &Parameter{Name: "lr", Value: 0.1}
		second := &Parameter{Name: "lr", Value: 0.2}

		assert.NotEqual(t, first.ValueHash(), second.ValueHash())
		assert.NotEqual(t, first.ProvIdentifier(), second.ProvIdentifier())
	})

	t.Run("hash covers non numeric values", func(t *testing.T) {
		parameter := &Parameter{Name: "mode", Value: "batch"}
		assert.Equal(t, parameter.ValueHash(), (&Parameter{Name: "mode", Value: "batch"}).ValueHash())
	})
}

func TestToProv(t *testing.T) {
	t.Run("entities carry their type marker", func(t *testing.T) {
		version := &PipelineVersion{ID: 0}
		element := version.ToProv()

		assert.Equal(t, prov.KindEntity, element.Kind)
		assert.Contains(t, element.Attributes, prov.Attribute{Key: prov.AttrType, Value: TypePipelineVersion})
		assert.Contains(t, element.Attributes, prov.Attribute{Key: "id", Value: 0})
	})

	t.Run("operator runs are collections", func(t *testing.T) {
		run := &OperatorRun{ID: "run-1", CreatedAt: time.Unix(42, 0)}
		element := run.ToProv()

		assert.Contains(t, element.Attributes, prov.Attribute{Key: prov.AttrType, Value: TypeOperatorRun})
		assert.Contains(t, element.Attributes, prov.Attribute{Key: prov.AttrType, Value: TypeCollection})
	})

	t.Run("activities carry start and end time", func(t *testing.T) {
		at := time.Unix(100, 0)
		change := &PipelineChange{
			UUID: "c-1",
			Type: OperatorCreation,
			Time: at,
		}
		element := change.ToProv()

		assert.Equal(t, prov.KindActivity, element.Kind)
		assert.Contains(t, element.Attributes, prov.Attribute{Key: prov.AttrStartTime, Value: at})
		assert.Contains(t, element.Attributes, prov.Attribute{Key: prov.AttrEndTime, Value: at})
		assert.Contains(t, element.Attributes, prov.Attribute{Key: "pipeline_change_type", Value: "OperatorCreation"})
	})

	t.Run("connections render operator ids as strings", func(t *testing.T) {
		connection := &Connection{ID: 9, FromOperatorID: 1, ToOperatorID: 2}
		element := connection.ToProv()

		assert.Contains(t, element.Attributes, prov.Attribute{Key: "from_operator_id", Value: "1"})
		assert.Contains(t, element.Attributes, prov.Attribute{Key: "to_operator_id", Value: "2"})
	})
}
