package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/medication"
	"github.com/carelink/medsafe/internal/errs"
)

// ScheduleRepo implements medication.ScheduleRepository.
type ScheduleRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewScheduleRepo creates the repository.
func NewScheduleRepo(pool *pgxpool.Pool, logger *zap.Logger) *ScheduleRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleRepo{pool: pool, logger: logger}
}

func (r *ScheduleRepo) Create(ctx context.Context, s *medication.Schedule) error {
	query := `
		INSERT INTO medication_schedules (id, medication_id, patient_id, times, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		s.ID, s.MedicationID, s.PatientID, s.Times, s.Active, s.CreatedAt)
	if err != nil {
		return errs.Infrastructure("schedules.create", err)
	}
	return nil
}

func (r *ScheduleRepo) ActiveByMedication(ctx context.Context, medicationID uuid.UUID) (*medication.Schedule, error) {
	query := `
		SELECT id, medication_id, patient_id, times, active, created_at
		FROM medication_schedules
		WHERE medication_id = $1 AND active
		ORDER BY created_at DESC
		LIMIT 1
	`
	s := &medication.Schedule{}
	err := db(ctx, r.pool).QueryRow(ctx, query, medicationID).Scan(
		&s.ID, &s.MedicationID, &s.PatientID, &s.Times, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("schedule", medicationID)
		}
		return nil, errs.Infrastructure("schedules.active", err)
	}
	return s, nil
}

func (r *ScheduleRepo) DeactivateByMedication(ctx context.Context, medicationID uuid.UUID) error {
	_, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE medication_schedules SET active = false WHERE medication_id = $1 AND active`,
		medicationID)
	if err != nil {
		return errs.Infrastructure("schedules.deactivate", err)
	}
	return nil
}

// ListActivePatients returns the distinct patients that currently have at
// least one active schedule. Used by the dose monitor sweep.
func (r *ScheduleRepo) ListActivePatients(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT patient_id FROM medication_schedules WHERE active`)
	if err != nil {
		return nil, errs.Infrastructure("schedules.patients", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Infrastructure("schedules.patients", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListActiveByPatient returns every active schedule for a patient.
func (r *ScheduleRepo) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Schedule, error) {
	query := `
		SELECT id, medication_id, patient_id, times, active, created_at
		FROM medication_schedules
		WHERE patient_id = $1 AND active
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, errs.Infrastructure("schedules.list", err)
	}
	defer rows.Close()

	var scheds []*medication.Schedule
	for rows.Next() {
		s := &medication.Schedule{}
		if err := rows.Scan(&s.ID, &s.MedicationID, &s.PatientID, &s.Times, &s.Active, &s.CreatedAt); err != nil {
			return nil, errs.Infrastructure("schedules.scan", err)
		}
		scheds = append(scheds, s)
	}
	return scheds, rows.Err()
}
