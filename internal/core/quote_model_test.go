package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-engine/internal/core"
)

func TestNewQuoteItem_DerivesAmounts(t *testing.T) {
	notes := "rush"
	it, err := core.NewQuoteItem(1, uuid.New(), uuid.New(), 2, dec("100.00"), dec("10"), &notes)
	require.NoError(t, err)

	assert.Equal(t, 1, it.LineNumber)
	assertDecimal(t, "20.00", it.DiscountAmount, "discount_amount")
	assertDecimal(t, "180.00", it.LineTotal, "line_total")
	assert.Equal(t, &notes, it.Notes)
}

func TestNewQuoteItem_CollectsEveryFieldError(t *testing.T) {
	_, err := core.NewQuoteItem(0, uuid.Nil, uuid.Nil, 0, dec("-1"), dec("101"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))

	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"line_number", "variant_id", "material_id", "quantity", "unit_price", "discount_percent"}, fields)
}

func TestNewQuoteItem_DiscountBounds(t *testing.T) {
	for _, p := range []string{"0", "100", "33.5"} {
		_, err := core.NewQuoteItem(1, uuid.New(), uuid.New(), 1, dec("5"), dec(p), nil)
		assert.NoError(t, err, "discount %s", p)
	}
	_, err := core.NewQuoteItem(1, uuid.New(), uuid.New(), 1, dec("5"), dec("-0.01"), nil)
	assert.Error(t, err)
}

func TestNewQuoteItem_FreeItemAllowed(t *testing.T) {
	it, err := core.NewQuoteItem(1, uuid.New(), uuid.New(), 5, decimal.Zero, decimal.Zero, nil)
	require.NoError(t, err)
	assert.True(t, it.LineTotal.IsZero())
}

func TestPricingRecord_EffectiveOn(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(time.DateOnly, s)
		require.NoError(t, err)
		return d
	}
	exp := day("2025-06-30")
	rec := core.PricingRecord{EffectiveDate: day("2025-01-01"), ExpirationDate: &exp, IsActive: true}

	assert.False(t, rec.EffectiveOn(day("2024-12-31")))
	assert.True(t, rec.EffectiveOn(day("2025-01-01")))
	assert.True(t, rec.EffectiveOn(day("2025-06-29").Add(23*time.Hour)))
	assert.False(t, rec.EffectiveOn(day("2025-06-30")), "expiration date is exclusive")

	open := core.PricingRecord{EffectiveDate: day("2025-01-01"), IsActive: true}
	assert.True(t, open.EffectiveOn(day("2099-01-01")))

	open.IsActive = false
	assert.False(t, open.EffectiveOn(day("2025-02-01")))
}
