package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	auditCreated       = "created"
	auditStatusChanged = "status_changed"
	auditItemsChanged  = "items_changed"
	auditDeleted       = "deleted"
)

func recordAudit(ctx context.Context, q pgxQuerier, quoteID uuid.UUID, action string, from, to *QuoteStatus, actor *uuid.UUID) error {
	_, err := q.Exec(ctx, `
		INSERT INTO quote_audit_log (quote_id, action, from_status, to_status, actor_id)
		VALUES ($1, $2, $3, $4, $5)
	`, quoteID, action, from, to, actor)
	if err != nil {
		return fmt.Errorf("failed to record %s audit entry: %w", action, err)
	}
	return nil
}

func fetchAuditTrail(ctx context.Context, q pgxQuerier, quoteID uuid.UUID) ([]AuditEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, quote_id, action, from_status, to_status, actor_id, created_at
		FROM quote_audit_log
		WHERE quote_id = $1
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.QuoteID, &e.Action, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
