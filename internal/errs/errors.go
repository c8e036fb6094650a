// Package errs defines the error kinds shared by the engine components.
// Interactions and missed doses are domain outputs, not errors; only
// invalid input, unknown identities, undefined schedules and storage
// failures surface as errors.
package errs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports a missing or invalid required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an unknown entity identity.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind.
func NotFound(kind string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ScheduleUndefinedError reports a compliance query against a medication
// with no active schedule (PRN or unscheduled).
type ScheduleUndefinedError struct {
	MedicationID uuid.UUID
}

func (e *ScheduleUndefinedError) Error() string {
	return fmt.Sprintf("no active schedule for medication %s", e.MedicationID)
}

// IsScheduleUndefined reports whether err is a ScheduleUndefinedError.
func IsScheduleUndefined(err error) bool {
	var su *ScheduleUndefinedError
	return errors.As(err, &su)
}

// InfrastructureError wraps a persistence or timeout failure. Retryable.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure: %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// Infrastructure wraps err as an InfrastructureError for operation op.
func Infrastructure(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}

// IsInfrastructure reports whether err is an InfrastructureError.
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}
