package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/interaction"
	"github.com/carelink/medsafe/internal/errs"
)

// InteractionRepo implements interaction.Repository over the reference
// table. A formulary collaborator may replace or extend the rows.
type InteractionRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewInteractionRepo creates the repository.
func NewInteractionRepo(pool *pgxpool.Pool, logger *zap.Logger) *InteractionRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionRepo{pool: pool, logger: logger}
}

// FindPair matches (a,b) in either ordering, case-insensitively, against
// active reference rows.
func (r *InteractionRepo) FindPair(ctx context.Context, a, b string) ([]*interaction.Interaction, error) {
	query := `
		SELECT id, medication_a, medication_b, severity, description, recommendation, active, created_at
		FROM medication_interactions
		WHERE active
		  AND ((LOWER(medication_a) = LOWER($1) AND LOWER(medication_b) = LOWER($2))
		    OR (LOWER(medication_a) = LOWER($2) AND LOWER(medication_b) = LOWER($1)))
	`
	rows, err := db(ctx, r.pool).Query(ctx, query, a, b)
	if err != nil {
		return nil, errs.Infrastructure("interactions.find", err)
	}
	defer rows.Close()

	var found []*interaction.Interaction
	for rows.Next() {
		in := &interaction.Interaction{}
		err := rows.Scan(&in.ID, &in.MedicationA, &in.MedicationB, &in.Severity,
			&in.Description, &in.Recommendation, &in.Active, &in.CreatedAt)
		if err != nil {
			return nil, errs.Infrastructure("interactions.scan", err)
		}
		found = append(found, in)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Infrastructure("interactions.find", err)
	}
	return found, nil
}

func (r *InteractionRepo) Insert(ctx context.Context, in *interaction.Interaction) error {
	query := `
		INSERT INTO medication_interactions
		(id, medication_a, medication_b, severity, description, recommendation, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		in.ID, in.MedicationA, in.MedicationB, in.Severity,
		in.Description, in.Recommendation, in.Active, in.CreatedAt)
	if err != nil {
		return errs.Infrastructure("interactions.insert", err)
	}
	return nil
}

func (r *InteractionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication_interactions`).Scan(&n); err != nil {
		return 0, errs.Infrastructure("interactions.count", err)
	}
	return n, nil
}
