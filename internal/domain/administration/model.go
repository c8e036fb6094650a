// Package administration implements the append-only dose-event log.
package administration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a scheduled dose.
type Status string

const (
	StatusAdministered Status = "administered"
	StatusPartial      Status = "partial"
	StatusMissed       Status = "missed"
	StatusRefused      Status = "refused"
	StatusDelayed      Status = "delayed"
	StatusCancelled    Status = "cancelled"
	StatusPending      Status = "pending"
)

var validStatuses = map[Status]bool{
	StatusAdministered: true, StatusPartial: true, StatusMissed: true,
	StatusRefused: true, StatusDelayed: true, StatusCancelled: true,
	StatusPending: true,
}

// Valid reports whether s is a known administration status.
func (s Status) Valid() bool { return validStatuses[s] }

// Administration is an immutable dose event. Once created, its clinical
// facts are never mutated; corrections are new events against the same
// scheduled slot.
type Administration struct {
	ID              uuid.UUID  `json:"id"`
	MedicationID    uuid.UUID  `json:"medication_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	ScheduledTime   time.Time  `json:"scheduled_time"`
	ActualTime      *time.Time `json:"actual_time,omitempty"`
	Status          Status     `json:"status"`
	DosageGiven     string     `json:"dosage_given,omitempty"`
	SideEffects     []string   `json:"side_effects,omitempty"`
	PatientResponse *int       `json:"patient_response,omitempty"`
	Witness         string     `json:"witness,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Repository is the persistence collaborator for the dose-event log.
// The log is append-only; there is no update or delete.
type Repository interface {
	Append(ctx context.Context, a *Administration) error
	ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*Administration, error)
	ListByMedicationSince(ctx context.Context, medicationID uuid.UUID, since time.Time) ([]*Administration, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Administration, error)
}
