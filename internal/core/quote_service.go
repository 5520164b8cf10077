package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// createAttempts bounds the retries of Create after a quote number collision.
const createAttempts = 3

// QuoteService owns the quote lifecycle. Every write runs in one transaction
// and totals are only ever written by RecalculateTotals.
type QuoteService interface {
	Create(ctx context.Context, in CreateQuoteInput) (*Quote, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateQuoteInput) (*Quote, error)
	// Delete hard-deletes a DRAFT quote and its items; other statuses are a conflict.
	Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error
	// RecalculateTotals re-reads the stored items and rewrites the header totals.
	RecalculateTotals(ctx context.Context, id uuid.UUID) (*Quote, error)

	// Item mutation, DRAFT only. Each call ends with a recalculation.
	AddItem(ctx context.Context, id uuid.UUID, in ItemInput) (*Quote, error)
	UpdateItem(ctx context.Context, id uuid.UUID, lineNumber int, in ItemUpdate) (*Quote, error)
	RemoveItem(ctx context.Context, id uuid.UUID, lineNumber int) (*Quote, error)

	// ExpireOverdue moves every open quote whose valid_until is before asOf to EXPIRED.
	ExpireOverdue(ctx context.Context, asOf time.Time) (int, error)

	// Queries
	Get(ctx context.Context, id uuid.UUID) (*Quote, error)
	GetByNumber(ctx context.Context, quoteNumber string) (*Quote, error)
	List(ctx context.Context, filter QuoteFilter, opts ListOptions) (*QuoteList, error)
	History(ctx context.Context, id uuid.UUID) ([]AuditEntry, error)
	// NextQuoteNumber previews the number the next Create would receive.
	NextQuoteNumber(ctx context.Context) (string, error)
}

// QuoteConfig holds the defaults applied at creation.
type QuoteConfig struct {
	DefaultTaxRate decimal.Decimal
	ValidityDays   int
}

type quoteService struct {
	pool    *pgxpool.Pool
	pricing PricingSource
	seq     SequenceGenerator
	cfg     QuoteConfig
	now     func() time.Time
}

// QuoteOption customizes NewQuoteService.
type QuoteOption func(*quoteService)

// WithClock replaces time.Now, which drives pricing dates, default validity
// and the approval timestamp.
func WithClock(now func() time.Time) QuoteOption {
	return func(s *quoteService) { s.now = now }
}

func NewQuoteService(pool *pgxpool.Pool, pricing PricingSource, seq SequenceGenerator, cfg QuoteConfig, opts ...QuoteOption) QuoteService {
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = 30
	}
	s := &quoteService{pool: pool, pricing: pricing, seq: seq, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *quoteService) Create(ctx context.Context, in CreateQuoteInput) (*Quote, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	validUntil := dateOnly(now).AddDate(0, 0, s.cfg.ValidityDays)
	if in.ValidUntil != nil {
		validUntil = dateOnly(*in.ValidUntil)
		if validUntil.Before(dateOnly(now)) {
			return nil, NewValidationError("valid_until", "must not be in the past")
		}
	}
	taxRate := s.cfg.DefaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}

	var lastErr error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		id, err := s.createOnce(ctx, in, now, validUntil, taxRate)
		if err == nil {
			return s.Get(ctx, id)
		}
		if !errors.Is(err, errDuplicateNumber) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to allocate a unique quote number after %d attempts: %w", createAttempts, lastErr)
}

var errDuplicateNumber = fmt.Errorf("%w: duplicate quote number", ErrConflict)

func (s *quoteService) createOnce(ctx context.Context, in CreateQuoteInput, now, validUntil time.Time, taxRate decimal.Decimal) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureCustomer(ctx, tx, in.CustomerID); err != nil {
		return uuid.Nil, err
	}

	quoteNumber, err := s.seq.Next(ctx, tx, QuoteNumbers, now.Year())
	if err != nil {
		return uuid.Nil, err
	}

	// Insert the header with zero totals; RecalculateTotals fills them in below.
	id := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO quotes (id, quote_number, customer_id, status, tax_rate, valid_until, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, id, quoteNumber, in.CustomerID, StatusDraft, taxRate, validUntil, in.Notes, in.CreatedBy, now)
	if err != nil {
		if isUniqueViolation(err, "quotes_quote_number_key") {
			return uuid.Nil, fmt.Errorf("quote number %s: %w", quoteNumber, errDuplicateNumber)
		}
		return uuid.Nil, fmt.Errorf("failed to insert quote: %w", err)
	}

	for i, input := range in.Items {
		if _, err := s.insertPricedItem(ctx, tx, id, i+1, input, now); err != nil {
			return uuid.Nil, err
		}
	}

	if _, err := recalculateTx(ctx, tx, id, now); err != nil {
		return uuid.Nil, err
	}

	if err := recordAudit(ctx, tx, id, auditCreated, nil, statusPtr(StatusDraft), &in.CreatedBy); err != nil {
		return uuid.Nil, err
	}
	quote, err := getQuote(ctx, tx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if err := enqueueEvent(ctx, tx, QuoteEvent{Type: EventQuoteCreated, QuoteID: id, ToStatus: statusPtr(StatusDraft), Quote: quote, OccurredAt: now}); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit quote creation: %w", err)
	}
	return id, nil
}

// insertPricedItem resolves the line's price as of now and stores it as the
// line's snapshot. An unpriceable line aborts the caller's transaction.
func (s *quoteService) insertPricedItem(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, lineNumber int, in ItemInput, now time.Time) (QuoteItem, error) {
	asOf := dateOnly(now)
	price, found, err := s.pricing.CurrentPrice(ctx, in.VariantID, in.MaterialID, asOf)
	if err != nil {
		return QuoteItem{}, fmt.Errorf("line %d: failed to resolve price: %w", lineNumber, err)
	}
	if !found {
		return QuoteItem{}, &PricingNotFoundError{LineNumber: lineNumber, VariantID: in.VariantID, MaterialID: in.MaterialID, AsOf: asOf}
	}

	item, err := NewQuoteItem(lineNumber, in.VariantID, in.MaterialID, in.Quantity, price, in.DiscountPercent, in.Notes)
	if err != nil {
		return QuoteItem{}, fmt.Errorf("line %d: %w", lineNumber, err)
	}
	item.ID = uuid.New()
	item.QuoteID = quoteID

	_, err = tx.Exec(ctx, `
		INSERT INTO quote_items (id, quote_id, line_number, product_variant_id, box_material_id, quantity,
		                         unit_price, discount_percent, discount_amount, line_total, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, item.ID, quoteID, item.LineNumber, item.ProductVariantID, item.BoxMaterialID, item.Quantity,
		item.UnitPrice, item.DiscountPercent, item.DiscountAmount, item.LineTotal, item.Notes, now)
	if err != nil {
		return QuoteItem{}, fmt.Errorf("failed to insert quote item %d: %w", lineNumber, err)
	}
	return item, nil
}

func (s *quoteService) Update(ctx context.Context, id uuid.UUID, in UpdateQuoteInput) (*Quote, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current QuoteStatus
	var version int
	err = tx.QueryRow(ctx, "SELECT status, version FROM quotes WHERE id = $1 FOR UPDATE", id).Scan(&current, &version)
	if err != nil {
		return nil, quoteLookupErr(id, err)
	}
	if in.ExpectedVersion != nil && *in.ExpectedVersion != version {
		return nil, fmt.Errorf("%w: quote %s is at version %d, expected %d", ErrConflict, id, version, *in.ExpectedVersion)
	}

	if in.TaxRate != nil && current != StatusDraft {
		return nil, fmt.Errorf("%w: tax rate of quote %s cannot change in status %s", ErrConflict, id, current)
	}

	// The status is checked before anything is written so an illegal
	// transition rejects the whole update.
	statusChange := in.Status != nil && *in.Status != current
	if statusChange {
		if err := checkTransition(current, *in.Status); err != nil {
			return nil, err
		}
		if *in.Status == StatusApproved && in.ActorID == nil {
			return nil, NewValidationError("actor_id", "is required to approve a quote")
		}
	}

	newStatus := current
	var approvedBy *uuid.UUID
	var approvedAt *time.Time
	if statusChange {
		newStatus = *in.Status
		if newStatus == StatusApproved {
			approvedBy = in.ActorID
			approvedAt = &now
		}
	}

	var validUntil *time.Time
	if in.ValidUntil != nil {
		d := dateOnly(*in.ValidUntil)
		validUntil = &d
	}

	_, err = tx.Exec(ctx, `
		UPDATE quotes
		SET status      = $2,
		    valid_until = COALESCE($3, valid_until),
		    notes       = COALESCE($4, notes),
		    tax_rate    = COALESCE($5, tax_rate),
		    approved_by = COALESCE($6, approved_by),
		    approved_at = COALESCE($7, approved_at),
		    version     = version + 1,
		    updated_at  = $8
		WHERE id = $1
	`, id, newStatus, validUntil, in.Notes, in.TaxRate, approvedBy, approvedAt, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update quote %s: %w", id, err)
	}

	if in.TaxRate != nil {
		if _, err := recalculateTx(ctx, tx, id, now); err != nil {
			return nil, err
		}
	}

	if statusChange {
		if err := recordAudit(ctx, tx, id, auditStatusChanged, &current, &newStatus, in.ActorID); err != nil {
			return nil, err
		}
		quote, err := getQuote(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		ev := QuoteEvent{Type: EventQuoteStatusChanged, QuoteID: id, FromStatus: &current, ToStatus: &newStatus, Quote: quote, OccurredAt: now}
		if err := enqueueEvent(ctx, tx, ev); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit quote update: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *quoteService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status QuoteStatus
	err = tx.QueryRow(ctx, "SELECT status FROM quotes WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		return quoteLookupErr(id, err)
	}
	if status != StatusDraft {
		return fmt.Errorf("%w: quote %s cannot be deleted: status is %s (only DRAFT quotes can be deleted)", ErrConflict, id, status)
	}

	// Items go before the header.
	if _, err := tx.Exec(ctx, "DELETE FROM quote_items WHERE quote_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete items of quote %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM quotes WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete quote %s: %w", id, err)
	}

	if err := recordAudit(ctx, tx, id, auditDeleted, &status, nil, actor); err != nil {
		return err
	}
	if err := enqueueEvent(ctx, tx, QuoteEvent{Type: EventQuoteDeleted, QuoteID: id, FromStatus: &status, OccurredAt: s.now()}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quote deletion: %w", err)
	}
	return nil
}

func (s *quoteService) RecalculateTotals(ctx context.Context, id uuid.UUID) (*Quote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockQuote(ctx, tx, id); err != nil {
		return nil, err
	}
	if _, err := recalculateTx(ctx, tx, id, s.now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recalculation: %w", err)
	}
	return s.Get(ctx, id)
}

// recalculateTx is the only code path that writes quote totals. It refreshes
// each item's derived columns from its price snapshot, then the header.
func recalculateTx(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, now time.Time) (Totals, error) {
	var taxRate decimal.Decimal
	if err := tx.QueryRow(ctx, "SELECT tax_rate FROM quotes WHERE id = $1", quoteID).Scan(&taxRate); err != nil {
		return Totals{}, quoteLookupErr(quoteID, err)
	}

	items, err := fetchItems(ctx, tx, quoteID)
	if err != nil {
		return Totals{}, err
	}
	for i := range items {
		it := &items[i]
		before := it.LineTotal
		applyLineAmounts(it)
		if before.Equal(it.LineTotal) {
			continue
		}
		if _, err := tx.Exec(ctx,
			"UPDATE quote_items SET discount_amount = $2, line_total = $3 WHERE id = $1",
			it.ID, it.DiscountAmount, it.LineTotal,
		); err != nil {
			return Totals{}, fmt.Errorf("failed to refresh line %d: %w", it.LineNumber, err)
		}
	}

	totals := ComputeTotals(items, taxRate)
	_, err = tx.Exec(ctx, `
		UPDATE quotes
		SET subtotal = $2, discount_amount = $3, tax_amount = $4, total_amount = $5, updated_at = $6
		WHERE id = $1
	`, quoteID, totals.Subtotal, totals.DiscountAmount, totals.TaxAmount, totals.TotalAmount, now)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to write totals for quote %s: %w", quoteID, err)
	}
	return totals, nil
}

// ExpireOverdue skips rows locked by concurrent writers; the next sweep picks them up.
func (s *quoteService) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	now := s.now()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, status FROM quotes
		WHERE status = ANY($1) AND valid_until < $2
		ORDER BY valid_until
		FOR UPDATE SKIP LOCKED
	`, []string{string(StatusDraft), string(StatusSent), string(StatusApproved)}, dateOnly(asOf))
	if err != nil {
		return 0, fmt.Errorf("failed to query overdue quotes: %w", err)
	}
	type overdue struct {
		id     uuid.UUID
		status QuoteStatus
	}
	var due []overdue
	for rows.Next() {
		var o overdue
		if err := rows.Scan(&o.id, &o.status); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan overdue quote: %w", err)
		}
		due = append(due, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read overdue quotes: %w", err)
	}

	expired := StatusExpired
	for _, o := range due {
		if err := checkTransition(o.status, expired); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx,
			"UPDATE quotes SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1",
			o.id, expired, now,
		); err != nil {
			return 0, fmt.Errorf("failed to expire quote %s: %w", o.id, err)
		}
		from := o.status
		if err := recordAudit(ctx, tx, o.id, auditStatusChanged, &from, &expired, nil); err != nil {
			return 0, err
		}
		quote, err := getQuote(ctx, tx, o.id)
		if err != nil {
			return 0, err
		}
		ev := QuoteEvent{Type: EventQuoteStatusChanged, QuoteID: o.id, FromStatus: &from, ToStatus: &expired, Quote: quote, OccurredAt: now}
		if err := enqueueEvent(ctx, tx, ev); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit expiry sweep: %w", err)
	}
	return len(due), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func ensureCustomer(ctx context.Context, q pgxQuerier, customerID uuid.UUID) error {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)", customerID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up customer %s: %w", customerID, err)
	}
	if !exists {
		return fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	return nil
}

// lockQuote takes the row lock on a quote and returns its status.
func lockQuote(ctx context.Context, tx pgx.Tx, id uuid.UUID) (QuoteStatus, error) {
	var status QuoteStatus
	if err := tx.QueryRow(ctx, "SELECT status FROM quotes WHERE id = $1 FOR UPDATE", id).Scan(&status); err != nil {
		return "", quoteLookupErr(id, err)
	}
	return status, nil
}

func quoteLookupErr(id uuid.UUID, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch quote %s: %w", id, err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func statusPtr(s QuoteStatus) *QuoteStatus {
	return &s
}
