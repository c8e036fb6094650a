package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/alert"
)

// OutboxNotifier implements alert.Notifier by queueing the alert in
// alert_outbox. The relay service publishes queued alerts to the
// notification bus; delivery beyond the bus is the collaborator's job.
type OutboxNotifier struct {
	pool   *pgxpool.Pool
	topic  string
	logger *zap.Logger
}

// NewOutboxNotifier creates a notifier writing to the given topic.
func NewOutboxNotifier(pool *pgxpool.Pool, topic string, logger *zap.Logger) *OutboxNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxNotifier{pool: pool, topic: topic, logger: logger}
}

// Notify queues the alert for publication. Joins an enclosing patient
// transaction when one is bound to ctx.
func (n *OutboxNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	query := `
		INSERT INTO alert_outbox (alert_id, patient_id, alert_type, payload, topic, key)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = db(ctx, n.pool).Exec(ctx, query,
		a.ID.String(), a.PatientID.String(), string(a.Type), payload, n.topic, a.PatientID.String())
	if err != nil {
		return fmt.Errorf("queue alert: %w", err)
	}

	n.logger.Debug("alert queued for notification",
		zap.String("alert_id", a.ID.String()),
		zap.String("topic", n.topic))
	return nil
}
