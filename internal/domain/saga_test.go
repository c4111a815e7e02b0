package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSagaStep_Transitions(t *testing.T) {
	s := NewSagaStep(SagaStepCreateAccount)
	assert.Equal(t, SagaStepPending, s.Status)
	assert.True(t, s.ExecutedAt.IsZero())

	s.Complete()
	assert.Equal(t, SagaStepCompleted, s.Status)
	assert.False(t, s.ExecutedAt.IsZero())

	s.Compensate()
	assert.Equal(t, SagaStepCompensated, s.Status)

	s.Fail("boom")
	assert.Equal(t, SagaStepFailed, s.Status)
	assert.Equal(t, "boom", s.Error)
}

func TestSaga_CompletedInReverse(t *testing.T) {
	saga := NewSaga(SagaStepCreateAccount, SagaStepSetClaims, SagaStepWriteUserRecord)
	saga.Step(SagaStepCreateAccount).Complete()
	saga.Step(SagaStepSetClaims).Complete()
	saga.Step(SagaStepWriteUserRecord).Fail("write failed")

	done := saga.Completed()
	require.Len(t, done, 2)
	assert.Equal(t, SagaStepSetClaims, done[0].Name)
	assert.Equal(t, SagaStepCreateAccount, done[1].Name)

	done[1].Compensate()
	assert.Equal(t, SagaStepCompensated, saga.Step(SagaStepCreateAccount).Status)
	assert.Nil(t, saga.Step("missing"))
}
