package app

import (
	"context"

	"quote-engine/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It turns loosely typed request values (string ids and dates) into core
// inputs and reports malformed values as *core.ValidationError. It contains
// no display logic.
type ApplicationService interface {
	// CreateQuote prices every line and persists a DRAFT quote atomically.
	CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error)

	// GetQuote returns a quote by UUID or quote number.
	GetQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// ListQuotes returns one filtered, sorted page plus the total match count.
	ListQuotes(ctx context.Context, req ListQuotesRequest) (*QuoteListResult, error)

	// UpdateQuote applies header changes and an optional status transition.
	UpdateQuote(ctx context.Context, id string, req UpdateQuoteRequest) (*QuoteResult, error)

	// DeleteQuote removes a DRAFT quote and its items.
	DeleteQuote(ctx context.Context, id, actorID string) error

	// RecalculateQuote rewrites stored totals from stored items.
	RecalculateQuote(ctx context.Context, id string) (*QuoteResult, error)

	AddQuoteItem(ctx context.Context, id string, req QuoteItemRequest) (*QuoteResult, error)
	UpdateQuoteItem(ctx context.Context, id string, line int, req UpdateItemRequest) (*QuoteResult, error)
	RemoveQuoteItem(ctx context.Context, id string, line int) (*QuoteResult, error)

	// QuoteHistory returns the audit trail of a quote by UUID or quote number.
	QuoteHistory(ctx context.Context, ref string) (*HistoryResult, error)

	// NextQuoteNumber previews the next quote number without allocating it.
	NextQuoteNumber(ctx context.Context) (string, error)

	// ExpireQuotes expires open quotes whose validity ended before asOf
	// (YYYY-MM-DD, empty for today).
	ExpireQuotes(ctx context.Context, asOf string) (*ExpireResult, error)

	// Calculate prices a prospective quote with tier, bulk and regional tax
	// rules. Nothing is stored.
	Calculate(ctx context.Context, req CalculateRequest) (*core.Calculation, error)

	// GetPrice resolves the effective catalog price of a variant/material pair.
	GetPrice(ctx context.Context, req PriceRequest) (*PriceResult, error)

	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error)
	GetCustomer(ctx context.Context, id string) (*core.Customer, error)
}
