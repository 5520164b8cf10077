package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is the aggregate root of the quoting engine. Subtotal, TaxAmount,
// DiscountAmount and TotalAmount are derived from Items by RecalculateTotals
// and are never set directly by callers.
type Quote struct {
	ID             uuid.UUID       `json:"id"`
	QuoteNumber    string          `json:"quote_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerNumber string          `json:"customer_number"` // joined from customers
	CustomerName   string          `json:"customer_name"`   // joined from customers
	Status         QuoteStatus     `json:"status"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ValidUntil     time.Time       `json:"valid_until"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedBy      uuid.UUID       `json:"created_by"`
	ApprovedBy     *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []QuoteItem     `json:"items,omitempty"`
}

// Totals returns the stored derived amounts of the quote.
func (q *Quote) Totals() Totals {
	return Totals{
		Subtotal:       q.Subtotal,
		DiscountAmount: q.DiscountAmount,
		TaxAmount:      q.TaxAmount,
		TotalAmount:    q.TotalAmount,
	}
}

// QuoteItem is one priced line of a quote. UnitPrice is a snapshot taken when
// the line was inserted and is never re-resolved against the catalog.
type QuoteItem struct {
	ID               uuid.UUID       `json:"id"`
	QuoteID          uuid.UUID       `json:"quote_id"`
	LineNumber       int             `json:"line_number"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	BoxMaterialID    uuid.UUID       `json:"box_material_id"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewQuoteItem builds a line from a resolved price snapshot, checking the
// quantity and discount ranges and deriving DiscountAmount and LineTotal.
func NewQuoteItem(lineNumber int, variantID, materialID uuid.UUID, quantity int, unitPrice, discountPercent decimal.Decimal, notes *string) (QuoteItem, error) {
	var fields []FieldError
	if lineNumber < 1 {
		fields = append(fields, FieldError{Field: "line_number", Message: "must be at least 1"})
	}
	if variantID == uuid.Nil {
		fields = append(fields, FieldError{Field: "variant_id", Message: "is required"})
	}
	if materialID == uuid.Nil {
		fields = append(fields, FieldError{Field: "material_id", Message: "is required"})
	}
	if quantity <= 0 {
		fields = append(fields, FieldError{Field: "quantity", Message: "must be a positive integer"})
	}
	if unitPrice.IsNegative() {
		fields = append(fields, FieldError{Field: "unit_price", Message: "must not be negative"})
	}
	if !validPercent(discountPercent) {
		fields = append(fields, FieldError{Field: "discount_percent", Message: "must be between 0 and 100"})
	}
	if len(fields) > 0 {
		return QuoteItem{}, &ValidationError{Fields: fields}
	}

	amounts := ComputeLine(unitPrice, quantity, discountPercent)
	return QuoteItem{
		LineNumber:       lineNumber,
		ProductVariantID: variantID,
		BoxMaterialID:    materialID,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		DiscountPercent:  discountPercent,
		DiscountAmount:   amounts.Discount,
		LineTotal:        amounts.Total,
		Notes:            notes,
	}, nil
}

// PricingRecord is an effective-dated catalog price for a variant/material
// pair, valid over [EffectiveDate, ExpirationDate). A nil ExpirationDate is
// open-ended.
type PricingRecord struct {
	ID               uuid.UUID       `json:"id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	BoxMaterialID    uuid.UUID       `json:"box_material_id"`
	Price            decimal.Decimal `json:"price"`
	EffectiveDate    time.Time       `json:"effective_date"`
	ExpirationDate   *time.Time      `json:"expiration_date,omitempty"`
	IsActive         bool            `json:"is_active"`
}

// EffectiveOn reports whether the record prices the pair on the given date.
func (r PricingRecord) EffectiveOn(asOf time.Time) bool {
	day := dateOnly(asOf)
	if !r.IsActive || dateOnly(r.EffectiveDate).After(day) {
		return false
	}
	return r.ExpirationDate == nil || dateOnly(*r.ExpirationDate).After(day)
}

// AuditEntry is one row of a quote's status history.
type AuditEntry struct {
	ID         int64        `json:"id"`
	QuoteID    uuid.UUID    `json:"quote_id"`
	Action     string       `json:"action"`
	FromStatus *QuoteStatus `json:"from_status,omitempty"`
	ToStatus   *QuoteStatus `json:"to_status,omitempty"`
	ActorID    *uuid.UUID   `json:"actor_id,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var hundred = decimal.NewFromInt(100)

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
