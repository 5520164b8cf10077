package app

import (
	"time"

	"quote-engine/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteResult is returned by quote lifecycle operations.
type QuoteResult struct {
	Quote *core.Quote
}

// QuoteListResult is returned by ListQuotes.
type QuoteListResult struct {
	Quotes []core.Quote
	Total  int
	Limit  int
	Offset int
}

// HistoryResult is returned by QuoteHistory.
type HistoryResult struct {
	QuoteID uuid.UUID
	Entries []core.AuditEntry
}

// ExpireResult is returned by ExpireQuotes.
type ExpireResult struct {
	AsOf    time.Time
	Expired int
}

// PriceResult is returned by GetPrice.
type PriceResult struct {
	VariantID  uuid.UUID       `json:"variant_id"`
	MaterialID uuid.UUID       `json:"material_id"`
	AsOf       time.Time       `json:"as_of"`
	Price      decimal.Decimal `json:"price"`
}
