package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"quote-engine/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestComputeTotals_TwoLinesWithDiscount(t *testing.T) {
	items := []core.QuoteItem{
		{Quantity: 2, UnitPrice: dec("100.00"), DiscountPercent: dec("10")},
		{Quantity: 1, UnitPrice: dec("50.00"), DiscountPercent: decimal.Zero},
	}

	tot := core.ComputeTotals(items, decimal.Zero)

	assertDecimal(t, "230.00", tot.Subtotal, "subtotal")
	assertDecimal(t, "20.00", tot.DiscountAmount, "discount")
	assertDecimal(t, "0", tot.TaxAmount, "tax")
	assertDecimal(t, "230.00", tot.TotalAmount, "total")
}

func TestComputeLine(t *testing.T) {
	la := core.ComputeLine(dec("100.00"), 2, dec("10"))
	assertDecimal(t, "200.00", la.Gross, "gross")
	assertDecimal(t, "20.00", la.Discount, "discount")
	assertDecimal(t, "180.00", la.Total, "total")
}

func TestComputeLine_DiscountPlusTotalEqualsGross(t *testing.T) {
	cases := []struct {
		price    string
		qty      int
		discount string
	}{
		{"19.99", 3, "12.5"},
		{"0.01", 7, "33.333"},
		{"1234.56", 11, "100"},
		{"8.75", 1, "0"},
		{"3.33", 3, "7.77"},
	}
	for _, tc := range cases {
		la := core.ComputeLine(dec(tc.price), tc.qty, dec(tc.discount))
		assert.True(t, la.Discount.Add(la.Total).Equal(la.Gross),
			"%s x %d at %s%%: %s + %s != %s", tc.price, tc.qty, tc.discount, la.Discount, la.Total, la.Gross)
		assert.True(t, la.Discount.Equal(la.Discount.Round(2)), "discount %s not rounded to cents", la.Discount)
	}
}

func TestComputeTotals_Tax(t *testing.T) {
	items := []core.QuoteItem{
		{Quantity: 3, UnitPrice: dec("33.33"), DiscountPercent: decimal.Zero},
	}

	tot := core.ComputeTotals(items, dec("0.0825"))

	assertDecimal(t, "99.99", tot.Subtotal, "subtotal")
	assertDecimal(t, "8.25", tot.TaxAmount, "tax")
	assert.True(t, tot.Subtotal.Add(tot.TaxAmount).Equal(tot.TotalAmount))
}

func TestComputeTotals_IgnoresStoredLineColumns(t *testing.T) {
	items := []core.QuoteItem{
		{Quantity: 1, UnitPrice: dec("10"), DiscountPercent: decimal.Zero, LineTotal: dec("999"), DiscountAmount: dec("5")},
	}

	tot := core.ComputeTotals(items, decimal.Zero)

	assertDecimal(t, "10", tot.Subtotal, "subtotal")
	assertDecimal(t, "0", tot.DiscountAmount, "discount")
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := []core.QuoteItem{
		{Quantity: 4, UnitPrice: dec("12.49"), DiscountPercent: dec("15")},
		{Quantity: 9, UnitPrice: dec("7.10"), DiscountPercent: dec("2.5")},
	}
	first := core.ComputeTotals(items, dec("0.07"))
	second := core.ComputeTotals(items, dec("0.07"))

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
}

func TestComputeTotals_Empty(t *testing.T) {
	tot := core.ComputeTotals(nil, dec("0.1"))
	assert.True(t, tot.TotalAmount.IsZero())
}
