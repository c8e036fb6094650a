// Package medication implements the prescription lifecycle: creation
// with interaction screening, updates, schedule generation and
// discontinuation.
package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Frequency is the enumerated dosing frequency code on a prescription.
type Frequency string

const (
	FrequencyOnceDaily       Frequency = "once_daily"
	FrequencyTwiceDaily      Frequency = "twice_daily"
	FrequencyThreeTimesDaily Frequency = "three_times_daily"
	FrequencyFourTimesDaily  Frequency = "four_times_daily"
	FrequencyEvery6Hours     Frequency = "every_6_hours"
	FrequencyEvery8Hours     Frequency = "every_8_hours"
	FrequencyEvery12Hours    Frequency = "every_12_hours"
	FrequencyWeekly          Frequency = "weekly"
	FrequencyAsNeeded        Frequency = "as_needed"
)

// Route is the administration route.
type Route string

const (
	RouteOral         Route = "oral"
	RouteTopical      Route = "topical"
	RouteInjection    Route = "injection"
	RouteInhalation   Route = "inhalation"
	RouteSublingual   Route = "sublingual"
	RouteTransdermal  Route = "transdermal"
	RouteSubcutaneous Route = "subcutaneous"
)

// Priority is the prescription priority.
type Priority string

const (
	PriorityRoutine Priority = "routine"
	PriorityUrgent  Priority = "urgent"
	PriorityStat    Priority = "stat"
)

// Medication is one prescribing decision. Discontinuing sets Active=false
// and EndDate; rows are never deleted.
type Medication struct {
	ID           uuid.UUID  `json:"id"`
	PatientID    uuid.UUID  `json:"patient_id"`
	PrescriberID uuid.UUID  `json:"prescriber_id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Frequency    Frequency  `json:"frequency"`
	Route        Route      `json:"route"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Active       bool       `json:"active"`
	IsPRN        bool       `json:"is_prn"`
	Priority     Priority   `json:"priority"`
	Instructions string     `json:"instructions"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	UpdatedBy    string     `json:"updated_by,omitempty"`
}

// Schedule is the concrete set of daily clock times derived from a
// non-PRN medication. At most one active schedule per active medication;
// frequency changes regenerate the schedule rather than patching it.
type Schedule struct {
	ID           uuid.UUID `json:"id"`
	MedicationID uuid.UUID `json:"medication_id"`
	PatientID    uuid.UUID `json:"patient_id"`
	Times        []string  `json:"times"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository is the persistence collaborator for medications.
type Repository interface {
	Create(ctx context.Context, m *Medication) error
	Get(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
	ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
}

// ScheduleRepository is the persistence collaborator for dosing schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	// ActiveByMedication returns the active schedule for a medication, or
	// a NotFoundError when there is none.
	ActiveByMedication(ctx context.Context, medicationID uuid.UUID) (*Schedule, error)
	// DeactivateByMedication clears the active flag on every schedule of
	// a medication.
	DeactivateByMedication(ctx context.Context, medicationID uuid.UUID) error
}

// PatientTx serializes multi-step writes per patient. The postgres
// implementation runs fn inside a transaction holding an advisory lock
// keyed on the patient, so two concurrent prescriptions for the same
// patient cannot both miss seeing each other during interaction checks.
type PatientTx interface {
	InPatientTx(ctx context.Context, patientID uuid.UUID, fn func(ctx context.Context) error) error
}
