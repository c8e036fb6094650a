package administration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/errs"
)

// Recorder appends dose events and raises missed-dose alerts.
type Recorder struct {
	repo   Repository
	alerts *alert.Manager
	logger *zap.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(repo Repository, alerts *alert.Manager, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, alerts: alerts, logger: logger}
}

// RecordInput describes a dose event.
type RecordInput struct {
	MedicationID    uuid.UUID
	PatientID       uuid.UUID
	ScheduledTime   time.Time
	ActualTime      *time.Time
	Status          Status
	DosageGiven     string
	SideEffects     []string
	PatientResponse *int
	Witness         string
	Notes           string
}

// Record appends the event unconditionally. Whether a scheduled slot was
// already covered is a caller concern: partial doses, corrections and
// late entries are all legitimate multiple records against one slot.
// A missed or refused status raises exactly one missed_dose alert;
// alert failure is logged and never fails the record.
func (r *Recorder) Record(ctx context.Context, in RecordInput) (*Administration, error) {
	if in.MedicationID == uuid.Nil {
		return nil, errs.Validation("medication_id", "is required")
	}
	if in.PatientID == uuid.Nil {
		return nil, errs.Validation("patient_id", "is required")
	}
	if in.ScheduledTime.IsZero() {
		return nil, errs.Validation("scheduled_time", "is required")
	}
	if !in.Status.Valid() {
		return nil, errs.Validation("status", "unknown administration status")
	}
	if in.PatientResponse != nil && (*in.PatientResponse < 1 || *in.PatientResponse > 5) {
		return nil, errs.Validation("patient_response", "must be between 1 and 5")
	}

	event := &Administration{
		ID:              uuid.New(),
		MedicationID:    in.MedicationID,
		PatientID:       in.PatientID,
		ScheduledTime:   in.ScheduledTime,
		ActualTime:      in.ActualTime,
		Status:          in.Status,
		DosageGiven:     in.DosageGiven,
		SideEffects:     in.SideEffects,
		PatientResponse: in.PatientResponse,
		Witness:         in.Witness,
		Notes:           in.Notes,
		CreatedAt:       time.Now().UTC(),
	}
	if err := r.repo.Append(ctx, event); err != nil {
		return nil, err
	}

	if event.Status == StatusMissed || event.Status == StatusRefused {
		reason := event.Notes
		if reason == "" {
			reason = "No reason provided"
		}
		if _, err := r.alerts.Create(ctx, alert.CreateInput{
			PatientID:      event.PatientID,
			MedicationID:   &event.MedicationID,
			Type:           alert.TypeMissedDose,
			Severity:       alert.SeverityMedium,
			Message:        "Dose " + string(event.Status) + " at " + event.ScheduledTime.Format(time.RFC3339) + ": " + reason,
			RequiredAction: "Confirm with patient and reschedule if appropriate",
		}); err != nil {
			r.logger.Error("missed-dose alert creation failed",
				zap.String("administration_id", event.ID.String()),
				zap.Error(err))
		}
	}

	r.logger.Info("administration recorded",
		zap.String("administration_id", event.ID.String()),
		zap.String("medication_id", event.MedicationID.String()),
		zap.String("status", string(event.Status)))
	return event, nil
}

// ListByMedication returns the event log for a medication.
func (r *Recorder) ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*Administration, error) {
	return r.repo.ListByMedication(ctx, medicationID)
}

// ListByPatient returns the event log for a patient.
func (r *Recorder) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Administration, error) {
	return r.repo.ListByPatient(ctx, patientID)
}
