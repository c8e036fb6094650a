package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/errs"
)

// Repository is the persistence collaborator for alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	Get(ctx context.Context, id uuid.UUID) (*Alert, error)
	// UpdateAck persists the acknowledgement fields only.
	UpdateAck(ctx context.Context, a *Alert) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error)
	ListUnacknowledged(ctx context.Context, patientID uuid.UUID) ([]*Alert, error)
}

// Notifier receives alerts after they are durably recorded. Delivery
// (email/SMS/push) is entirely the collaborator's responsibility.
type Notifier interface {
	Notify(ctx context.Context, a *Alert) error
}

// CreateInput describes the alert to raise.
type CreateInput struct {
	PatientID      uuid.UUID
	MedicationID   *uuid.UUID
	Type           Type
	Severity       Severity
	Message        string
	RequiredAction string
}

// Manager creates, classifies and acknowledges alerts. One alert is
// created per triggering event; the engine never deduplicates.
type Manager struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewManager creates a manager. notifier may be nil when no notification
// collaborator is attached.
func NewManager(repo Repository, notifier Notifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{repo: repo, notifier: notifier, logger: logger}
}

// Create persists a new unacknowledged alert and hands it to the
// notification collaborator. Notification failure is logged, never
// returned: the engine's obligation ends at durably recording the alert.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*Alert, error) {
	if in.PatientID == uuid.Nil {
		return nil, errs.Validation("patient_id", "is required")
	}
	if !in.Type.Valid() {
		return nil, errs.Validation("type", "unknown alert type")
	}
	if !in.Severity.Valid() {
		return nil, errs.Validation("severity", "unknown severity")
	}
	if in.Message == "" {
		return nil, errs.Validation("message", "must not be empty")
	}

	a := &Alert{
		ID:             uuid.New(),
		PatientID:      in.PatientID,
		MedicationID:   in.MedicationID,
		Type:           in.Type,
		Severity:       in.Severity,
		Message:        in.Message,
		RequiredAction: in.RequiredAction,
		CreatedAt:      time.Now().UTC(),
	}
	if err := m.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, a); err != nil {
			m.logger.Error("alert notification failed",
				zap.String("alert_id", a.ID.String()),
				zap.String("type", string(a.Type)),
				zap.Error(err))
		}
	}

	m.logger.Info("alert raised",
		zap.String("alert_id", a.ID.String()),
		zap.String("patient_id", a.PatientID.String()),
		zap.String("type", string(a.Type)),
		zap.String("severity", string(a.Severity)))
	return a, nil
}

// Acknowledge marks an alert as acknowledged by actor. Idempotent: a
// second call reapplies the same values rather than failing.
func (m *Manager) Acknowledge(ctx context.Context, id uuid.UUID, actor string) (*Alert, error) {
	if actor == "" {
		return nil, errs.Validation("actor", "is required")
	}

	a, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Acknowledged && a.AcknowledgedBy == actor {
		return a, nil
	}

	now := time.Now().UTC()
	a.Acknowledged = true
	a.AcknowledgedBy = actor
	a.AcknowledgedAt = &now
	if err := m.repo.UpdateAck(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByPatient returns every alert for a patient, newest first.
func (m *Manager) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error) {
	return m.repo.ListByPatient(ctx, patientID)
}

// ListUnacknowledged returns open alerts for a patient.
func (m *Manager) ListUnacknowledged(ctx context.Context, patientID uuid.UUID) ([]*Alert, error) {
	return m.repo.ListUnacknowledged(ctx, patientID)
}
