package app

import (
	"github.com/shopspring/decimal"
)

// QuoteItemRequest is one requested line. Unit prices always come from the
// catalog.
type QuoteItemRequest struct {
	VariantID       string           `json:"variant_id" jsonschema:"required,format=uuid"`
	MaterialID      string           `json:"material_id" jsonschema:"required,format=uuid"`
	Quantity        int              `json:"quantity" jsonschema:"required,minimum=1"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	Notes           *string          `json:"notes,omitempty" jsonschema:"maxLength=1000"`
}

// CreateQuoteRequest is the body of quote creation.
type CreateQuoteRequest struct {
	CustomerID string             `json:"customer_id" jsonschema:"required,format=uuid"`
	Items      []QuoteItemRequest `json:"items" jsonschema:"required,minItems=1"`
	ValidUntil string             `json:"valid_until,omitempty" jsonschema:"format=date"` // YYYY-MM-DD
	Notes      *string            `json:"notes,omitempty" jsonschema:"maxLength=2000"`
	TaxRate    *decimal.Decimal   `json:"tax_rate,omitempty"`
	CreatedBy  string             `json:"-"`
}

// UpdateQuoteRequest carries optional header changes. Nil fields are left as is.
type UpdateQuoteRequest struct {
	Status          *string          `json:"status,omitempty" jsonschema:"enum=DRAFT,enum=SENT,enum=APPROVED,enum=REJECTED,enum=EXPIRED"`
	ValidUntil      *string          `json:"valid_until,omitempty" jsonschema:"format=date"`
	Notes           *string          `json:"notes,omitempty" jsonschema:"maxLength=2000"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
	ExpectedVersion *int             `json:"expected_version,omitempty" jsonschema:"minimum=1"`
	ActorID         string           `json:"-"`
}

// UpdateItemRequest changes the editable fields of a line.
type UpdateItemRequest struct {
	Quantity        *int             `json:"quantity,omitempty" jsonschema:"minimum=1"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// ListQuotesRequest filters and pages ListQuotes. Empty strings mean no filter.
type ListQuotesRequest struct {
	CustomerID string
	Status     string
	CreatedBy  string
	Search     string
	Limit      int
	Offset     int
	SortBy     string
	Desc       bool
}

// CalculateRequest is the body of the stateless calculation.
type CalculateRequest struct {
	CustomerID string             `json:"customer_id,omitempty" jsonschema:"format=uuid"`
	Tier       string             `json:"tier,omitempty" jsonschema:"enum=retail,enum=contractor,enum=dealer,enum=wholesale"`
	Region     string             `json:"region,omitempty" jsonschema:"maxLength=8"`
	AsOf       string             `json:"as_of,omitempty" jsonschema:"format=date"`
	Items      []QuoteItemRequest `json:"items" jsonschema:"required,minItems=1"`
}

// PriceRequest looks up one catalog price. AsOf defaults to today.
type PriceRequest struct {
	VariantID  string
	MaterialID string
	AsOf       string
}

// CreateCustomerRequest is the body of customer creation.
type CreateCustomerRequest struct {
	Name    string  `json:"name" jsonschema:"required,maxLength=200"`
	Email   *string `json:"email,omitempty" jsonschema:"format=email"`
	Company *string `json:"company,omitempty"`
	Tier    string  `json:"tier,omitempty" jsonschema:"enum=retail,enum=contractor,enum=dealer,enum=wholesale"`
	Region  *string `json:"region,omitempty" jsonschema:"maxLength=8"`
}
