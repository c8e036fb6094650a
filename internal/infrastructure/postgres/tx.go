// Package postgres provides the pgx-backed persistence collaborator:
// repositories for the six engine entities, the per-patient advisory
// lock and the transactional alert outbox.
package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories
// transparently join an enclosing patient transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// db returns the transaction bound to ctx, or the pool.
func db(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// TxManager serializes multi-step writes per patient using transaction-
// scoped advisory locks, so concurrent prescriptions for one patient see
// each other during interaction checks. Reads outside InPatientTx never
// take the lock.
type TxManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTxManager creates a transaction manager.
func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) *TxManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxManager{pool: pool, logger: logger}
}

// InPatientTx runs fn inside a transaction holding pg_advisory_xact_lock
// keyed on the patient. The lock releases automatically on commit or
// rollback.
func (m *TxManager) InPatientTx(ctx context.Context, patientID uuid.UUID, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", patientLockKey(patientID)); err != nil {
		return fmt.Errorf("acquire patient lock: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// patientLockKey hashes a patient UUID into the advisory-lock keyspace.
func patientLockKey(patientID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(patientID[:])
	return int64(h.Sum64())
}
