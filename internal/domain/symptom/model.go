// Package symptom implements patient symptom intake and clinical review,
// the engine's patient-facing alerting surface.
package symptom

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Report is a patient-submitted observation. FollowUpRequired is fixed
// at creation (severity >= 3) and never recomputed.
type Report struct {
	ID               uuid.UUID  `json:"id"`
	PatientID        uuid.UUID  `json:"patient_id"`
	MedicationID     *uuid.UUID `json:"medication_id,omitempty"`
	Symptoms         []string   `json:"symptoms"`
	Severity         int        `json:"severity"`
	Description      string     `json:"description,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	ReportedAt       time.Time  `json:"reported_at"`
	FollowUpRequired bool       `json:"follow_up_required"`
	IsResolved       bool       `json:"is_resolved"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ReviewedBy       string     `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes      string     `json:"review_notes,omitempty"`
	ActionTaken      string     `json:"action_taken,omitempty"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`
}

// Repository is the persistence collaborator for symptom reports.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id uuid.UUID) (*Report, error)
	Update(ctx context.Context, r *Report) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error)
}
