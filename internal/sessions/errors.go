// ABOUTME: Errors for the session/exercise log.
// ABOUTME: CascadeError reports which part of a session delete failed.
package sessions

import (
	"errors"
	"fmt"
)

// Cascade steps.
const (
	StepExercises = "exercises"
	StepSession   = "session"
)

// ErrSessionNotFound is returned when an operation needs an existing session.
var ErrSessionNotFound = errors.New("session not found")

// CascadeError reports a session delete that stopped partway. Deleted is
// the number of child exercises already removed.
type CascadeError struct {
	SessionID string
	Step      string
	Deleted   int
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("delete session %s: %s step failed after removing %d exercises: %v",
		e.SessionID, e.Step, e.Deleted, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
