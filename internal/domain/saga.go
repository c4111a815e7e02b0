package domain

import (
	"time"
)

// Saga step status constants.
const (
	SagaStepPending     = "pending"
	SagaStepCompleted   = "completed"
	SagaStepFailed      = "failed"
	SagaStepCompensated = "compensated"
)

// Saga step names of the account manager's multi-step operations.
const (
	SagaStepCreateAccount   = "create_account"
	SagaStepSetClaims       = "set_claims"
	SagaStepWriteUserRecord = "write_user_record"
)

// SagaStep tracks one step of a multi-write operation with no transaction.
type SagaStep struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at,omitempty"`
}

// NewSagaStep creates a saga step in the pending state.
func NewSagaStep(name string) SagaStep {
	return SagaStep{Name: name, Status: SagaStepPending}
}

// Complete marks the step as done.
func (s *SagaStep) Complete() {
	s.Status = SagaStepCompleted
	s.ExecutedAt = time.Now().UTC()
}

// Fail marks the step as failed with the given error message.
func (s *SagaStep) Fail(err string) {
	s.Status = SagaStepFailed
	s.Error = err
	s.ExecutedAt = time.Now().UTC()
}

// Compensate marks the step as rolled back.
func (s *SagaStep) Compensate() {
	s.Status = SagaStepCompensated
	s.ExecutedAt = time.Now().UTC()
}

// Saga is the ordered trail of steps of one operation.
type Saga struct {
	Steps []SagaStep `json:"steps"`
}

// NewSaga creates a saga with the named steps, all pending.
func NewSaga(names ...string) *Saga {
	steps := make([]SagaStep, len(names))
	for i, n := range names {
		steps[i] = NewSagaStep(n)
	}
	return &Saga{Steps: steps}
}

// Step returns the step with the given name, or nil.
func (s *Saga) Step(name string) *SagaStep {
	for i := range s.Steps {
		if s.Steps[i].Name == name {
			return &s.Steps[i]
		}
	}
	return nil
}

// Completed lists completed steps in reverse order, the order in which they
// must be compensated.
func (s *Saga) Completed() []*SagaStep {
	var done []*SagaStep
	for i := len(s.Steps) - 1; i >= 0; i-- {
		if s.Steps[i].Status == SagaStepCompleted {
			done = append(done, &s.Steps[i])
		}
	}
	return done
}
