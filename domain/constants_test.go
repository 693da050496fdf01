package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePipelineChangeType(t *testing.T) {
	t.Run("accepts pascal case", func(t *testing.T) {
		changeType, err := ParsePipelineChangeType("OperatorCreation")
		require.NoError(t, err)
		assert.Equal(t, OperatorCreation, changeType)
	})

	t.Run("accepts snake case", func(t *testing.T) {
		changeType, err := ParsePipelineChangeType("CONNECTION_DELETION")
		require.NoError(t, err)
		assert.Equal(t, ConnectionDeletion, changeType)
	})

	t.Run("covers all five kinds", func(t *testing.T) {
		for spelling, expected := range map[string]PipelineChangeType{
			"OPERATOR_CREATION":    OperatorCreation,
			"OperatorModification": OperatorModification,
			"OPERATOR_DELETION":    OperatorDeletion,
			"ConnectionCreation":   ConnectionCreation,
			"CONNECTION_DELETION":  ConnectionDeletion,
		} {
			changeType, err := ParsePipelineChangeType(spelling)
			require.NoError(t, err)
			assert.Equal(t, expected, changeType)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := ParsePipelineChangeType("OperatorRenaming")
		assert.Error(t, err)
	})
}

func TestParseOperatorStepType(t *testing.T) {
	t.Run("accepts both spellings", func(t *testing.T) {
		for spelling, expected := range map[string]OperatorStepType{
			"ON_SOURCE_PRODUCED_TUPLE": OnSourceProducedTuple,
			"OnTupleTransmitted":       OnTupleTransmitted,
			"ON_STREAM_PROCESS_TUPLE":  OnStreamProcessTuple,
			"PreTupleProcessed":        PreTupleProcessed,
			"ON_TUPLE_PROCESSED":       OnTupleProcessed,
			"OnOpExecuted":             OnOpExecuted,
		} {
			stepType, err := ParseOperatorStepType(spelling)
			require.NoError(t, err)
			assert.Equal(t, expected, stepType)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := ParseOperatorStepType("ON_OP_CRASHED")
		assert.Error(t, err)
	})
}
