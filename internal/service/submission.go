package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/contactrelay/contactrelay/internal/logger"
	"github.com/contactrelay/contactrelay/internal/model"
)

// submission tracks one pass through the relay pipeline
type submission struct {
	id    string
	state model.SubmissionState
	log   *logger.Logger
}

func newSubmission(log *logger.Logger) *submission {
	return &submission{id: uuid.NewString(), state: model.StateIdle, log: log}
}

// advance moves to next, refusing any step the state machine does not allow
func (s *submission) advance(next model.SubmissionState, cause error) error {
	if !s.state.CanTransition(next) {
		return fmt.Errorf("submission %s: invalid transition %s -> %s", s.id, s.state, next)
	}
	s.log.Transition(s.id, s.state, next, cause)
	s.state = next
	return nil
}

// fail moves to a terminal failure state and returns cause
func (s *submission) fail(next model.SubmissionState, cause error) error {
	if err := s.advance(next, cause); err != nil {
		return err
	}
	return cause
}
