package medication

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/domain/interaction"
	"github.com/carelink/medsafe/internal/errs"
)

// Registry manages the prescription lifecycle.
type Registry struct {
	meds      Repository
	schedules ScheduleRepository
	tx        PatientTx
	checker   *interaction.Checker
	alerts    *alert.Manager
	logger    *zap.Logger
}

// NewRegistry wires the registry with its collaborators.
func NewRegistry(
	meds Repository,
	schedules ScheduleRepository,
	tx PatientTx,
	checker *interaction.Checker,
	alerts *alert.Manager,
	logger *zap.Logger,
) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		meds:      meds,
		schedules: schedules,
		tx:        tx,
		checker:   checker,
		alerts:    alerts,
		logger:    logger,
	}
}

// CreateInput describes a new prescription.
type CreateInput struct {
	PatientID    uuid.UUID
	PrescriberID uuid.UUID
	Name         string
	Dosage       string
	Frequency    Frequency
	Route        Route
	StartDate    time.Time
	IsPRN        bool
	Priority     Priority
	Instructions string
	CreatedBy    string
}

// CreateResult carries the created medication together with every
// interaction found and every alert raised, so the caller can react
// (block, require override). Creation itself is never blocked on an
// interaction.
type CreateResult struct {
	Medication   *Medication                `json:"medication"`
	Schedule     *Schedule                  `json:"schedule,omitempty"`
	Interactions []*interaction.Interaction `json:"interactions"`
	Alerts       []*alert.Alert             `json:"alerts"`
}

// Create validates and persists a new prescription, materializes its
// dosing schedule unless PRN, and screens it against the patient's other
// active medications. Medication, schedule and the interaction read run
// under the per-patient transaction; alert emission is best-effort
// afterwards and never rolls back the prescription.
func (r *Registry) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	med := &Medication{
		ID:           uuid.New(),
		PatientID:    in.PatientID,
		PrescriberID: in.PrescriberID,
		Name:         strings.TrimSpace(in.Name),
		Dosage:       strings.TrimSpace(in.Dosage),
		Frequency:    in.Frequency,
		Route:        in.Route,
		StartDate:    in.StartDate,
		Active:       true,
		IsPRN:        in.IsPRN,
		Priority:     in.Priority,
		Instructions: strings.TrimSpace(in.Instructions),
		CreatedAt:    now,
		UpdatedAt:    now,
		UpdatedBy:    in.CreatedBy,
	}
	if med.StartDate.IsZero() {
		med.StartDate = now
	}
	if med.Priority == "" {
		med.Priority = PriorityRoutine
	}

	result := &CreateResult{Medication: med}

	err := r.tx.InPatientTx(ctx, in.PatientID, func(ctx context.Context) error {
		actives, err := r.meds.ListActiveByPatient(ctx, in.PatientID)
		if err != nil {
			return err
		}

		if err := r.meds.Create(ctx, med); err != nil {
			return err
		}

		if !med.IsPRN {
			sched := &Schedule{
				ID:           uuid.New(),
				MedicationID: med.ID,
				PatientID:    med.PatientID,
				Times:        GenerateTimes(med.Frequency),
				Active:       true,
				CreatedAt:    now,
			}
			if err := r.schedules.Create(ctx, sched); err != nil {
				return err
			}
			result.Schedule = sched
		}

		names := make([]string, 0, len(actives))
		for _, m := range actives {
			names = append(names, m.Name)
		}
		found, err := r.checker.Check(ctx, med.Name, names)
		if err != nil {
			return err
		}
		result.Interactions = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ix := range result.Interactions {
		a, err := r.alerts.Create(ctx, alert.CreateInput{
			PatientID:    med.PatientID,
			MedicationID: &med.ID,
			Type:         alert.TypeInteraction,
			Severity:     alert.SeverityForInteraction(ix.Severity),
			Message: "Drug interaction: " + ix.MedicationA + " + " + ix.MedicationB +
				": " + ix.Description,
			RequiredAction: ix.Recommendation,
		})
		if err != nil {
			// A dropped alert degrades service but must not fail the
			// prescription.
			r.logger.Error("interaction alert creation failed",
				zap.String("medication_id", med.ID.String()),
				zap.Error(err))
			continue
		}
		result.Alerts = append(result.Alerts, a)
	}

	r.logger.Info("medication created",
		zap.String("medication_id", med.ID.String()),
		zap.String("patient_id", med.PatientID.String()),
		zap.Bool("prn", med.IsPRN),
		zap.Int("interactions", len(result.Interactions)))
	return result, nil
}

// UpdateInput carries partial changes to a prescription. Nil fields are
// left untouched.
type UpdateInput struct {
	Dosage       *string
	Frequency    *Frequency
	Route        *Route
	Priority     *Priority
	Instructions *string
}

// Update merges changes into a medication and stamps the audit fields.
// A frequency change regenerates the active schedule: the old one is
// deactivated and a new one created, never patched in place.
func (r *Registry) Update(ctx context.Context, id uuid.UUID, in UpdateInput, actor string) (*Medication, error) {
	med, err := r.meds.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	frequencyChanged := false
	if in.Dosage != nil {
		if strings.TrimSpace(*in.Dosage) == "" {
			return nil, errs.Validation("dosage", "must not be empty")
		}
		med.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil && *in.Frequency != med.Frequency {
		med.Frequency = *in.Frequency
		frequencyChanged = true
	}
	if in.Route != nil {
		med.Route = *in.Route
	}
	if in.Priority != nil {
		med.Priority = *in.Priority
	}
	if in.Instructions != nil {
		if strings.TrimSpace(*in.Instructions) == "" {
			return nil, errs.Validation("instructions", "must not be empty")
		}
		med.Instructions = strings.TrimSpace(*in.Instructions)
	}

	med.UpdatedAt = time.Now().UTC()
	med.UpdatedBy = actor

	err = r.tx.InPatientTx(ctx, med.PatientID, func(ctx context.Context) error {
		if err := r.meds.Update(ctx, med); err != nil {
			return err
		}
		if frequencyChanged && !med.IsPRN && med.Active {
			if err := r.schedules.DeactivateByMedication(ctx, med.ID); err != nil {
				return err
			}
			return r.schedules.Create(ctx, &Schedule{
				ID:           uuid.New(),
				MedicationID: med.ID,
				PatientID:    med.PatientID,
				Times:        GenerateTimes(med.Frequency),
				Active:       true,
				CreatedAt:    med.UpdatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return med, nil
}

// Discontinue deactivates a medication and its schedule as one atomic
// unit, then raises a discontinuation alert. Alert emission failure alone
// does not revert the discontinuation.
func (r *Registry) Discontinue(ctx context.Context, id uuid.UUID, actor, reason string) (*Medication, error) {
	med, err := r.meds.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	med.Active = false
	med.EndDate = &now
	med.UpdatedAt = now
	med.UpdatedBy = actor
	if reason != "" {
		// Append, never overwrite prior notes.
		note := "Discontinued: " + reason
		if med.Notes == "" {
			med.Notes = note
		} else {
			med.Notes = med.Notes + "\n" + note
		}
	}

	err = r.tx.InPatientTx(ctx, med.PatientID, func(ctx context.Context) error {
		if err := r.meds.Update(ctx, med); err != nil {
			return err
		}
		return r.schedules.DeactivateByMedication(ctx, med.ID)
	})
	if err != nil {
		return nil, err
	}

	msg := "Medication " + med.Name + " discontinued"
	if reason != "" {
		msg += ": " + reason
	}
	if _, err := r.alerts.Create(ctx, alert.CreateInput{
		PatientID:      med.PatientID,
		MedicationID:   &med.ID,
		Type:           alert.TypeDiscontinuation,
		Severity:       alert.SeverityMedium,
		Message:        msg,
		RequiredAction: "Review remaining medications and care plan",
	}); err != nil {
		r.logger.Error("discontinuation alert creation failed",
			zap.String("medication_id", med.ID.String()),
			zap.Error(err))
	}

	r.logger.Info("medication discontinued",
		zap.String("medication_id", med.ID.String()),
		zap.String("actor", actor))
	return med, nil
}

// Get returns a medication by id.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return r.meds.Get(ctx, id)
}

// ListByPatient returns all medications for a patient.
func (r *Registry) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	return r.meds.ListByPatient(ctx, patientID)
}

func validateCreate(in CreateInput) error {
	if in.PatientID == uuid.Nil {
		return errs.Validation("patient_id", "is required")
	}
	if in.PrescriberID == uuid.Nil {
		return errs.Validation("prescriber_id", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errs.Validation("name", "must not be empty")
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return errs.Validation("dosage", "must not be empty")
	}
	if strings.TrimSpace(in.Instructions) == "" {
		return errs.Validation("instructions", "must not be empty")
	}
	return nil
}
