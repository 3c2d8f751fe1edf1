// ABOUTME: Error types returned by the set log.
// ABOUTME: Callers match them with errors.As.
package setlog

import (
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
)

// ValidationError reports user input that is empty or out of range after sanitization.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TypeConflictError reports an exercise name already logged under another type.
type TypeConflictError struct {
	Exercise  string
	Existing  models.SetType
	Requested models.SetType
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("exercise %q is already logged as %s, cannot log it as %s",
		e.Exercise, e.Existing, e.Requested)
}
