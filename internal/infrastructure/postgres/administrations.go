package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/administration"
	"github.com/carelink/medsafe/internal/errs"
)

// AdministrationRepo implements administration.Repository over an
// append-only table. There is deliberately no UPDATE or DELETE here.
type AdministrationRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewAdministrationRepo creates the repository.
func NewAdministrationRepo(pool *pgxpool.Pool, logger *zap.Logger) *AdministrationRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdministrationRepo{pool: pool, logger: logger}
}

const administrationColumns = `
	id, medication_id, patient_id, scheduled_time, actual_time, status,
	dosage_given, side_effects, patient_response, witness, notes, created_at
`

func (r *AdministrationRepo) Append(ctx context.Context, a *administration.Administration) error {
	query := `
		INSERT INTO medication_administrations
		(id, medication_id, patient_id, scheduled_time, actual_time, status,
		 dosage_given, side_effects, patient_response, witness, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		a.ID, a.MedicationID, a.PatientID, a.ScheduledTime, a.ActualTime, a.Status,
		a.DosageGiven, a.SideEffects, a.PatientResponse, a.Witness, a.Notes, a.CreatedAt)
	if err != nil {
		return errs.Infrastructure("administrations.append", err)
	}
	return nil
}

func (r *AdministrationRepo) ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*administration.Administration, error) {
	return r.list(ctx,
		`SELECT `+administrationColumns+` FROM medication_administrations WHERE medication_id = $1 ORDER BY scheduled_time DESC`,
		medicationID)
}

func (r *AdministrationRepo) ListByMedicationSince(ctx context.Context, medicationID uuid.UUID, since time.Time) ([]*administration.Administration, error) {
	return r.list(ctx,
		`SELECT `+administrationColumns+` FROM medication_administrations WHERE medication_id = $1 AND scheduled_time >= $2 ORDER BY scheduled_time DESC`,
		medicationID, since)
}

func (r *AdministrationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*administration.Administration, error) {
	return r.list(ctx,
		`SELECT `+administrationColumns+` FROM medication_administrations WHERE patient_id = $1 ORDER BY scheduled_time DESC`,
		patientID)
}

func (r *AdministrationRepo) list(ctx context.Context, query string, args ...any) ([]*administration.Administration, error) {
	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Infrastructure("administrations.list", err)
	}
	defer rows.Close()

	var events []*administration.Administration
	for rows.Next() {
		a, err := scanAdministration(rows)
		if err != nil {
			return nil, errs.Infrastructure("administrations.scan", err)
		}
		events = append(events, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Infrastructure("administrations.list", err)
	}
	return events, nil
}

func scanAdministration(row pgx.Row) (*administration.Administration, error) {
	a := &administration.Administration{}
	err := row.Scan(
		&a.ID, &a.MedicationID, &a.PatientID, &a.ScheduledTime, &a.ActualTime, &a.Status,
		&a.DosageGiven, &a.SideEffects, &a.PatientResponse, &a.Witness, &a.Notes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
