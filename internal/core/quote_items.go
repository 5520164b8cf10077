package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// lockDraft locks the quote and fails with ErrConflict unless it is a DRAFT.
func lockDraft(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	status, err := lockQuote(ctx, tx, id)
	if err != nil {
		return err
	}
	if status != StatusDraft {
		return fmt.Errorf("%w: items of quote %s cannot change: status is %s (must be DRAFT)", ErrConflict, id, status)
	}
	return nil
}

func (s *quoteService) AddItem(ctx context.Context, id uuid.UUID, in ItemInput) (*Quote, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockDraft(ctx, tx, id); err != nil {
		return nil, err
	}

	var next int
	if err := tx.QueryRow(ctx, "SELECT COALESCE(MAX(line_number), 0) + 1 FROM quote_items WHERE quote_id = $1", id).Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to number new line: %w", err)
	}
	if _, err := s.insertPricedItem(ctx, tx, id, next, in, now); err != nil {
		return nil, err
	}
	if err := s.finishItemChange(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit new item: %w", err)
	}
	return s.Get(ctx, id)
}

// UpdateItem edits quantity, discount or notes of a line. The stored unit
// price is reused as-is.
func (s *quoteService) UpdateItem(ctx context.Context, id uuid.UUID, lineNumber int, in ItemUpdate) (*Quote, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockDraft(ctx, tx, id); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE quote_items
		SET quantity         = COALESCE($3, quantity),
		    discount_percent = COALESCE($4, discount_percent),
		    notes            = COALESCE($5, notes)
		WHERE quote_id = $1 AND line_number = $2
	`, id, lineNumber, in.Quantity, in.DiscountPercent, in.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update line %d: %w", lineNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("quote %s line %d: %w", id, lineNumber, ErrNotFound)
	}
	if err := s.finishItemChange(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}
	return s.Get(ctx, id)
}

// RemoveItem deletes a line and renumbers the following lines so numbering
// stays 1..N. A quote keeps at least one line.
func (s *quoteService) RemoveItem(ctx context.Context, id uuid.UUID, lineNumber int) (*Quote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockDraft(ctx, tx, id); err != nil {
		return nil, err
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM quote_items WHERE quote_id = $1", id).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	var itemID uuid.UUID
	err = tx.QueryRow(ctx, "SELECT id FROM quote_items WHERE quote_id = $1 AND line_number = $2", id, lineNumber).Scan(&itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quote %s line %d: %w", id, lineNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch line %d: %w", lineNumber, err)
	}
	if count <= 1 {
		return nil, NewValidationError("items", "a quote must keep at least one item")
	}

	if _, err := tx.Exec(ctx, "DELETE FROM quote_items WHERE id = $1", itemID); err != nil {
		return nil, fmt.Errorf("failed to delete line %d: %w", lineNumber, err)
	}
	// (quote_id, line_number) is unique DEFERRABLE INITIALLY DEFERRED, so the shift is checked at commit.
	if _, err := tx.Exec(ctx,
		"UPDATE quote_items SET line_number = line_number - 1 WHERE quote_id = $1 AND line_number > $2",
		id, lineNumber,
	); err != nil {
		return nil, fmt.Errorf("failed to renumber lines: %w", err)
	}
	if err := s.finishItemChange(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item removal: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *quoteService) finishItemChange(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	now := s.now()
	if _, err := recalculateTx(ctx, tx, id, now); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "UPDATE quotes SET version = version + 1 WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to bump quote version: %w", err)
	}
	return recordAudit(ctx, tx, id, auditItemsChanged, nil, nil, nil)
}
