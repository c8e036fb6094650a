package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/errs"
)

// AlertRepo implements alert.Repository. Acknowledgement is the only
// mutation; everything else is insert or read.
type AlertRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewAlertRepo creates the repository.
func NewAlertRepo(pool *pgxpool.Pool, logger *zap.Logger) *AlertRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertRepo{pool: pool, logger: logger}
}

const alertColumns = `
	id, patient_id, medication_id, alert_type, severity, message, required_action,
	acknowledged, acknowledged_by, acknowledged_at, created_at
`

func (r *AlertRepo) Create(ctx context.Context, a *alert.Alert) error {
	query := `
		INSERT INTO medication_alerts
		(id, patient_id, medication_id, alert_type, severity, message, required_action,
		 acknowledged, acknowledged_by, acknowledged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		a.ID, a.PatientID, a.MedicationID, a.Type, a.Severity, a.Message, a.RequiredAction,
		a.Acknowledged, nullableString(a.AcknowledgedBy), a.AcknowledgedAt, a.CreatedAt)
	if err != nil {
		return errs.Infrastructure("alerts.create", err)
	}
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `SELECT `+alertColumns+` FROM medication_alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("alert", id)
		}
		return nil, errs.Infrastructure("alerts.get", err)
	}
	return a, nil
}

func (r *AlertRepo) UpdateAck(ctx context.Context, a *alert.Alert) error {
	query := `
		UPDATE medication_alerts
		SET acknowledged = $2, acknowledged_by = $3, acknowledged_at = $4
		WHERE id = $1
	`
	tag, err := db(ctx, r.pool).Exec(ctx, query, a.ID, a.Acknowledged, a.AcknowledgedBy, a.AcknowledgedAt)
	if err != nil {
		return errs.Infrastructure("alerts.ack", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("alert", a.ID)
	}
	return nil
}

func (r *AlertRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*alert.Alert, error) {
	return r.list(ctx,
		`SELECT `+alertColumns+` FROM medication_alerts WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID)
}

func (r *AlertRepo) ListUnacknowledged(ctx context.Context, patientID uuid.UUID) ([]*alert.Alert, error) {
	return r.list(ctx,
		`SELECT `+alertColumns+` FROM medication_alerts WHERE patient_id = $1 AND NOT acknowledged ORDER BY created_at DESC`,
		patientID)
}

func (r *AlertRepo) list(ctx context.Context, query string, args ...any) ([]*alert.Alert, error) {
	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Infrastructure("alerts.list", err)
	}
	defer rows.Close()

	var alerts []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, errs.Infrastructure("alerts.scan", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Infrastructure("alerts.list", err)
	}
	return alerts, nil
}

func scanAlert(row pgx.Row) (*alert.Alert, error) {
	a := &alert.Alert{}
	var ackBy *string
	err := row.Scan(
		&a.ID, &a.PatientID, &a.MedicationID, &a.Type, &a.Severity, &a.Message, &a.RequiredAction,
		&a.Acknowledged, &ackBy, &a.AcknowledgedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if ackBy != nil {
		a.AcknowledgedBy = *ackBy
	}
	return a, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
