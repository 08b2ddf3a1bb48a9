package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/outbox"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/tracing"
)

// OutboxStore persists lifecycle events next to the loan documents and feeds
// the relay. Publish is the engine-facing side; the remaining methods serve
// the relay loop.
type OutboxStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOutboxStore(log *slog.Logger, pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{log: log, pool: pool}
}

// Publish appends one pending outbox row. It runs after the loan write, as
// its own statement: a failure here is the engine's problem to log, never to
// propagate.
func (s *OutboxStore) Publish(ctx context.Context, eventType, key string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
VALUES ($1,$2,$3,$4,$5,'pending')`,
		"prestamo", key, eventType, payload, tracing.Traceparent(ctx))
	return err
}

func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
SELECT id, aggregate_type, aggregate_id, type, payload, traceparent, created_at
FROM outbox
WHERE status = 'pending'
ORDER BY id
FOR UPDATE SKIP LOCKED
LIMIT $1`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var ev outbox.Event
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.Type,
			&ev.Payload, &ev.Traceparent, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(events) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	_, err = tx.Exec(ctx, `
UPDATE outbox
SET status='in_progress', relay_id=$1, lease_until=now() + $2::interval
WHERE id = ANY($3)`, relayID, lease.String(), ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	ct, err := s.pool.Exec(ctx, `UPDATE outbox SET status='sent' WHERE id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.New("no outbox rows updated")
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
UPDATE outbox
SET status='failed', last_error=$2, retry_count=retry_count+1
WHERE id=$1`, id, errMsg)
	return err
}
