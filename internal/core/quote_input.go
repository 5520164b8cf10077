package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested line of a new quote. The unit price is resolved
// from the catalog; callers cannot supply it.
type ItemInput struct {
	VariantID       uuid.UUID       `json:"variant_id" validate:"required"`
	MaterialID      uuid.UUID       `json:"material_id" validate:"required"`
	Quantity        int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	DiscountPercent decimal.Decimal `json:"discount_percent" validate:"gte=0,lte=100"`
	Notes           *string         `json:"notes" validate:"omitempty,max=1000"`
}

// CreateQuoteInput is the input of QuoteService.Create.
// ValidUntil defaults to creation date + the configured validity period and
// TaxRate to the configured default rate.
type CreateQuoteInput struct {
	CustomerID uuid.UUID        `json:"customer_id" validate:"required"`
	Items      []ItemInput      `json:"items" validate:"required,min=1,dive"`
	ValidUntil *time.Time       `json:"valid_until"`
	Notes      *string          `json:"notes" validate:"omitempty,max=2000"`
	TaxRate    *decimal.Decimal `json:"tax_rate" validate:"omitempty,gte=0,lte=1"`
	CreatedBy  uuid.UUID        `json:"created_by" validate:"required"`
}

// UpdateQuoteInput carries the optional header changes of QuoteService.Update.
// ActorID is recorded in the audit trail and becomes the approver when the
// quote enters APPROVED. ExpectedVersion, when set, must match the stored
// version or the update fails with ErrConflict.
type UpdateQuoteInput struct {
	Status          *QuoteStatus     `json:"status"`
	ValidUntil      *time.Time       `json:"valid_until"`
	Notes           *string          `json:"notes" validate:"omitempty,max=2000"`
	TaxRate         *decimal.Decimal `json:"tax_rate" validate:"omitempty,gte=0,lte=1"`
	ActorID         *uuid.UUID       `json:"actor_id"`
	ExpectedVersion *int             `json:"expected_version" validate:"omitempty,gte=1"`
}

// ItemUpdate changes the editable fields of a line. The unit price snapshot
// is not editable.
type ItemUpdate struct {
	Quantity        *int             `json:"quantity" validate:"omitempty,gt=0,lte=2147483647"`
	DiscountPercent *decimal.Decimal `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	Notes           *string          `json:"notes" validate:"omitempty,max=1000"`
}

// QuoteFilter narrows QuoteService.List. Search is a case-insensitive
// substring match over the quote number and the customer's number, name,
// email and company.
type QuoteFilter struct {
	CustomerID *uuid.UUID
	Status     *QuoteStatus
	CreatedBy  *uuid.UUID
	Search     string
}

// ListOptions pages and sorts QuoteService.List.
type ListOptions struct {
	Limit  int
	Offset int
	SortBy string // created_at, updated_at, quote_number, total_amount, valid_until, status
	Desc   bool
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = defaultPageSize
	}
	if o.Limit > maxPageSize {
		o.Limit = maxPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if _, ok := sortColumns[o.SortBy]; !ok {
		o.SortBy = "created_at"
		o.Desc = true
	}
	return o
}

var sortColumns = map[string]string{
	"created_at":   "q.created_at",
	"updated_at":   "q.updated_at",
	"quote_number": "q.quote_number",
	"total_amount": "q.total_amount",
	"valid_until":  "q.valid_until",
	"status":       "q.status",
}

// QuoteList is one page of quotes plus the total number of matches.
type QuoteList struct {
	Quotes []Quote `json:"quotes"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// CalculationRequest is the input of the stateless advanced calculation.
// Tier and Region override the customer's stored values when set.
type CalculationRequest struct {
	CustomerID *uuid.UUID   `json:"customer_id"`
	Tier       CustomerTier `json:"tier"`
	Region     string       `json:"region" validate:"omitempty,max=8"`
	AsOf       *time.Time   `json:"as_of"`
	Items      []ItemInput  `json:"items" validate:"required,min=1,dive"`
}
