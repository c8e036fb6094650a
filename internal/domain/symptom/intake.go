package symptom

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/errs"
)

// followUpThreshold is the severity at which clinical follow-up is
// required; alertThreshold is where an immediate side_effect alert fires.
const (
	followUpThreshold = 3
	alertThreshold    = 4
)

// Intake handles symptom reports and their clinical review.
type Intake struct {
	repo   Repository
	alerts *alert.Manager
	logger *zap.Logger
}

// NewIntake creates the intake service.
func NewIntake(repo Repository, alerts *alert.Manager, logger *zap.Logger) *Intake {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{repo: repo, alerts: alerts, logger: logger}
}

// ReportInput describes a symptom report submission.
type ReportInput struct {
	PatientID    uuid.UUID
	MedicationID *uuid.UUID
	Symptoms     []string
	Severity     int
	Description  string
	StartedAt    time.Time
}

// Report persists the observation. Severity 4 raises a high side_effect
// alert, severity 5 a critical one; either way the report itself is
// stored first and an alert failure is only logged.
func (i *Intake) Report(ctx context.Context, in ReportInput) (*Report, error) {
	if in.PatientID == uuid.Nil {
		return nil, errs.Validation("patient_id", "is required")
	}
	if in.Severity < 1 || in.Severity > 5 {
		return nil, errs.Validation("severity", "must be between 1 and 5")
	}
	if len(in.Symptoms) == 0 {
		return nil, errs.Validation("symptoms", "at least one symptom is required")
	}

	now := time.Now().UTC()
	rep := &Report{
		ID:               uuid.New(),
		PatientID:        in.PatientID,
		MedicationID:     in.MedicationID,
		Symptoms:         in.Symptoms,
		Severity:         in.Severity,
		Description:      in.Description,
		StartedAt:        in.StartedAt,
		ReportedAt:       now,
		FollowUpRequired: in.Severity >= followUpThreshold,
	}
	if rep.StartedAt.IsZero() {
		rep.StartedAt = now
	}
	if err := i.repo.Create(ctx, rep); err != nil {
		return nil, err
	}

	if in.Severity >= alertThreshold {
		sev := alert.SeverityHigh
		if in.Severity == 5 {
			sev = alert.SeverityCritical
		}
		if _, err := i.alerts.Create(ctx, alert.CreateInput{
			PatientID:      rep.PatientID,
			MedicationID:   rep.MedicationID,
			Type:           alert.TypeSideEffect,
			Severity:       sev,
			Message:        "Severe symptoms reported (severity " + strconv.Itoa(in.Severity) + "): " + strings.Join(rep.Symptoms, ", "),
			RequiredAction: "Immediate medical review required",
		}); err != nil {
			i.logger.Error("side-effect alert creation failed",
				zap.String("report_id", rep.ID.String()),
				zap.Error(err))
		}
	}

	i.logger.Info("symptom report received",
		zap.String("report_id", rep.ID.String()),
		zap.String("patient_id", rep.PatientID.String()),
		zap.Int("severity", rep.Severity),
		zap.Bool("follow_up", rep.FollowUpRequired))
	return rep, nil
}

// ReviewInput carries the clinician's review of a report.
type ReviewInput struct {
	Reviewer     string
	Notes        string
	ActionTaken  string
	IsResolved   bool
	FollowUpDate *time.Time
}

// Review records the clinical review. ResolvedAt is set only when
// IsResolved is explicitly true.
func (i *Intake) Review(ctx context.Context, id uuid.UUID, in ReviewInput) (*Report, error) {
	if in.Reviewer == "" {
		return nil, errs.Validation("reviewer", "is required")
	}

	rep, err := i.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rep.ReviewedBy = in.Reviewer
	rep.ReviewedAt = &now
	rep.ReviewNotes = in.Notes
	rep.ActionTaken = in.ActionTaken
	rep.FollowUpDate = in.FollowUpDate
	if in.IsResolved {
		rep.IsResolved = true
		rep.ResolvedAt = &now
	}

	if err := i.repo.Update(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// ListByPatient returns all symptom reports for a patient.
func (i *Intake) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error) {
	return i.repo.ListByPatient(ctx, patientID)
}
