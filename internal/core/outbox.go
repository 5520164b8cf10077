package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EventQuoteCreated       = "quote.created"
	EventQuoteStatusChanged = "quote.status_changed"
	EventQuoteDeleted       = "quote.deleted"
)

// OutboxEvent is a quote event recorded in the same transaction as the change
// it describes, waiting to be published.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	AggregateID uuid.UUID  `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// QuoteEvent is the JSON payload of an outbox event. Quote is the fully
// computed quote; consumers format it and never re-derive totals.
type QuoteEvent struct {
	Type       string       `json:"type"`
	QuoteID    uuid.UUID    `json:"quote_id"`
	FromStatus *QuoteStatus `json:"from_status,omitempty"`
	ToStatus   *QuoteStatus `json:"to_status,omitempty"`
	Quote      *Quote       `json:"quote,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func enqueueEvent(ctx context.Context, q pgxQuerier, ev QuoteEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Type, err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO quote_outbox (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)
	`, ev.QuoteID, ev.Type, payload)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", ev.Type, err)
	}
	return nil
}

// OutboxStore reads and acknowledges pending outbox events.
type OutboxStore interface {
	Unpublished(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
}

type outboxStore struct {
	pool *pgxpool.Pool
}

func NewOutboxStore(pool *pgxpool.Pool) OutboxStore {
	return &outboxStore{pool: pool}
}

func (s *outboxStore) Unpublished(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at, published_at
		FROM quote_outbox
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *outboxStore) MarkPublished(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "UPDATE quote_outbox SET published_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %d published: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox event %d: %w", id, ErrNotFound)
	}
	return nil
}
