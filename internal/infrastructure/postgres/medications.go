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

// MedicationRepo implements medication.Repository.
type MedicationRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicationRepo creates the repository.
func NewMedicationRepo(pool *pgxpool.Pool, logger *zap.Logger) *MedicationRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MedicationRepo{pool: pool, logger: logger}
}

const medicationColumns = `
	id, patient_id, prescriber_id, name, dosage, frequency, route,
	start_date, end_date, active, is_prn, priority, instructions, notes,
	created_at, updated_at, updated_by
`

func (r *MedicationRepo) Create(ctx context.Context, m *medication.Medication) error {
	query := `
		INSERT INTO medications
		(id, patient_id, prescriber_id, name, dosage, frequency, route,
		 start_date, end_date, active, is_prn, priority, instructions, notes,
		 created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		m.ID, m.PatientID, m.PrescriberID, m.Name, m.Dosage, m.Frequency, m.Route,
		m.StartDate, m.EndDate, m.Active, m.IsPRN, m.Priority, m.Instructions, m.Notes,
		m.CreatedAt, m.UpdatedAt, m.UpdatedBy,
	)
	if err != nil {
		return errs.Infrastructure("medications.create", err)
	}
	return nil
}

func (r *MedicationRepo) Get(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `SELECT `+medicationColumns+` FROM medications WHERE id = $1`, id)
	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("medication", id)
		}
		return nil, errs.Infrastructure("medications.get", err)
	}
	return m, nil
}

func (r *MedicationRepo) Update(ctx context.Context, m *medication.Medication) error {
	query := `
		UPDATE medications
		SET dosage = $2, frequency = $3, route = $4, end_date = $5,
		    active = $6, priority = $7, instructions = $8, notes = $9,
		    updated_at = $10, updated_by = $11
		WHERE id = $1
	`
	tag, err := db(ctx, r.pool).Exec(ctx, query,
		m.ID, m.Dosage, m.Frequency, m.Route, m.EndDate,
		m.Active, m.Priority, m.Instructions, m.Notes,
		m.UpdatedAt, m.UpdatedBy,
	)
	if err != nil {
		return errs.Infrastructure("medications.update", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("medication", m.ID)
	}
	return nil
}

func (r *MedicationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	return r.list(ctx, `SELECT `+medicationColumns+` FROM medications WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
}

func (r *MedicationRepo) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	return r.list(ctx, `SELECT `+medicationColumns+` FROM medications WHERE patient_id = $1 AND active ORDER BY created_at DESC`, patientID)
}

func (r *MedicationRepo) list(ctx context.Context, query string, args ...any) ([]*medication.Medication, error) {
	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Infrastructure("medications.list", err)
	}
	defer rows.Close()

	var meds []*medication.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, errs.Infrastructure("medications.scan", err)
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Infrastructure("medications.list", err)
	}
	return meds, nil
}

func scanMedication(row pgx.Row) (*medication.Medication, error) {
	m := &medication.Medication{}
	err := row.Scan(
		&m.ID, &m.PatientID, &m.PrescriberID, &m.Name, &m.Dosage, &m.Frequency, &m.Route,
		&m.StartDate, &m.EndDate, &m.Active, &m.IsPRN, &m.Priority, &m.Instructions, &m.Notes,
		&m.CreatedAt, &m.UpdatedAt, &m.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
