package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/symptom"
	"github.com/carelink/medsafe/internal/errs"
)

// SymptomRepo implements symptom.Repository.
type SymptomRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewSymptomRepo creates the repository.
func NewSymptomRepo(pool *pgxpool.Pool, logger *zap.Logger) *SymptomRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SymptomRepo{pool: pool, logger: logger}
}

const symptomColumns = `
	id, patient_id, medication_id, symptoms, severity, description,
	started_at, reported_at, follow_up_required, is_resolved, resolved_at,
	reviewed_by, reviewed_at, review_notes, action_taken, follow_up_date
`

func (r *SymptomRepo) Create(ctx context.Context, rep *symptom.Report) error {
	query := `
		INSERT INTO symptom_reports
		(id, patient_id, medication_id, symptoms, severity, description,
		 started_at, reported_at, follow_up_required, is_resolved, resolved_at,
		 reviewed_by, reviewed_at, review_notes, action_taken, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		rep.ID, rep.PatientID, rep.MedicationID, rep.Symptoms, rep.Severity, rep.Description,
		rep.StartedAt, rep.ReportedAt, rep.FollowUpRequired, rep.IsResolved, rep.ResolvedAt,
		nullableString(rep.ReviewedBy), rep.ReviewedAt, rep.ReviewNotes, rep.ActionTaken, rep.FollowUpDate)
	if err != nil {
		return errs.Infrastructure("symptoms.create", err)
	}
	return nil
}

func (r *SymptomRepo) Get(ctx context.Context, id uuid.UUID) (*symptom.Report, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `SELECT `+symptomColumns+` FROM symptom_reports WHERE id = $1`, id)
	rep, err := scanSymptomReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("symptom report", id)
		}
		return nil, errs.Infrastructure("symptoms.get", err)
	}
	return rep, nil
}

func (r *SymptomRepo) Update(ctx context.Context, rep *symptom.Report) error {
	query := `
		UPDATE symptom_reports
		SET is_resolved = $2, resolved_at = $3, reviewed_by = $4, reviewed_at = $5,
		    review_notes = $6, action_taken = $7, follow_up_date = $8
		WHERE id = $1
	`
	tag, err := db(ctx, r.pool).Exec(ctx, query,
		rep.ID, rep.IsResolved, rep.ResolvedAt, nullableString(rep.ReviewedBy), rep.ReviewedAt,
		rep.ReviewNotes, rep.ActionTaken, rep.FollowUpDate)
	if err != nil {
		return errs.Infrastructure("symptoms.update", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("symptom report", rep.ID)
	}
	return nil
}

func (r *SymptomRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*symptom.Report, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+symptomColumns+` FROM symptom_reports WHERE patient_id = $1 ORDER BY reported_at DESC`,
		patientID)
	if err != nil {
		return nil, errs.Infrastructure("symptoms.list", err)
	}
	defer rows.Close()

	var reports []*symptom.Report
	for rows.Next() {
		rep, err := scanSymptomReport(rows)
		if err != nil {
			return nil, errs.Infrastructure("symptoms.scan", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Infrastructure("symptoms.list", err)
	}
	return reports, nil
}

func scanSymptomReport(row pgx.Row) (*symptom.Report, error) {
	rep := &symptom.Report{}
	var reviewedBy *string
	err := row.Scan(
		&rep.ID, &rep.PatientID, &rep.MedicationID, &rep.Symptoms, &rep.Severity, &rep.Description,
		&rep.StartedAt, &rep.ReportedAt, &rep.FollowUpRequired, &rep.IsResolved, &rep.ResolvedAt,
		&reviewedBy, &rep.ReviewedAt, &rep.ReviewNotes, &rep.ActionTaken, &rep.FollowUpDate)
	if err != nil {
		return nil, err
	}
	if reviewedBy != nil {
		rep.ReviewedBy = *reviewedBy
	}
	return rep, nil
}
