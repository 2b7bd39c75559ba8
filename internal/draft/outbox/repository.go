package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyChannel is the Postgres channel pinged on every outbox insert.
const NotifyChannel = "draftroom_outbox_events"

// ErrEventNotFound reports a missing outbox row.
var ErrEventNotFound = errors.New("outbox event not found")

// Schema is the DDL the outbox expects.
const Schema = `
CREATE TABLE IF NOT EXISTS draft_outbox (
    id         UUID PRIMARY KEY,
    draft_id   UUID NOT NULL,
    event_type TEXT NOT NULL,
    payload    JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    sent_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS draft_outbox_unsent_idx ON draft_outbox (created_at) WHERE sent_at IS NULL;
`

// Repository persists outbox rows and pings the notify channel so the
// relay picks new events up without polling.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an outbox repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertEvent records a domain event and notifies the relay in one
// transaction.
func (r *Repository) InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error {
	id := uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO draft_outbox (id, draft_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
		id, draftID, eventType, payload); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, id.String()); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// FetchByID returns one outbox event.
func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (OutboxEvent, error) {
	var ev OutboxEvent
	err := r.pool.QueryRow(ctx,
		`SELECT id, draft_id, event_type, payload, created_at, sent_at
		 FROM draft_outbox WHERE id = $1`, id,
	).Scan(&ev.ID, &ev.DraftID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return OutboxEvent{}, ErrEventNotFound
	}
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return ev, nil
}

// FetchUnsent returns up to limit unpublished events, oldest first.
func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, draft_id, event_type, payload, created_at, sent_at
		 FROM draft_outbox WHERE sent_at IS NULL
		 ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.DraftID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkSent stamps an event as published.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE draft_outbox SET sent_at = now() WHERE id = $1 AND sent_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	return nil
}
