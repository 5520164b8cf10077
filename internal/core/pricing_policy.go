package core

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerTier selects a configured discount for the advanced calculation.
type CustomerTier string

const (
	TierRetail     CustomerTier = "retail"
	TierContractor CustomerTier = "contractor"
	TierDealer     CustomerTier = "dealer"
	TierWholesale  CustomerTier = "wholesale"
)

// Valid reports whether t is a known tier. The empty tier is treated as retail.
func (t CustomerTier) Valid() bool {
	switch t {
	case "", TierRetail, TierContractor, TierDealer, TierWholesale:
		return true
	}
	return false
}

// PricingPolicy configures the advanced calculation. Tier discounts and the
// bulk discount are percentages applied to the subtotal before tax. A tier
// with no configured entry receives no discount.
type PricingPolicy struct {
	TierDiscounts       map[CustomerTier]decimal.Decimal
	BulkThreshold       decimal.Decimal
	BulkDiscountPercent decimal.Decimal
	RegionTaxRates      map[string]decimal.Decimal
	DefaultTaxRate      decimal.Decimal
}

// TaxRateFor returns the tax rate of a state/province code, falling back to
// DefaultTaxRate for unknown or empty regions.
func (p PricingPolicy) TaxRateFor(region string) decimal.Decimal {
	code := strings.ToUpper(strings.TrimSpace(region))
	if rate, ok := p.RegionTaxRates[code]; ok && code != "" {
		return rate
	}
	return p.DefaultTaxRate
}

// TierDiscount returns the configured discount percent for a tier.
func (p PricingPolicy) TierDiscount(tier CustomerTier) decimal.Decimal {
	if tier == "" {
		tier = TierRetail
	}
	return p.TierDiscounts[tier]
}

// PricedLine is a calculation input whose unit price is already resolved.
type PricedLine struct {
	VariantID       uuid.UUID
	MaterialID      uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// CalculatedLine is one line of a Calculation.
type CalculatedLine struct {
	LineNumber      int             `json:"line_number"`
	VariantID       uuid.UUID       `json:"variant_id"`
	MaterialID      uuid.UUID       `json:"material_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// Calculation is the result of the advanced calculation.
// Subtotal = LineSubtotal − TierDiscount − BulkDiscount and
// TotalAmount = Subtotal + TaxAmount.
type Calculation struct {
	Lines               []CalculatedLine `json:"lines"`
	LineSubtotal        decimal.Decimal  `json:"line_subtotal"`
	Tier                CustomerTier     `json:"tier"`
	TierDiscountPercent decimal.Decimal  `json:"tier_discount_percent"`
	TierDiscount        decimal.Decimal  `json:"tier_discount"`
	BulkDiscountPercent decimal.Decimal  `json:"bulk_discount_percent"`
	BulkDiscount        decimal.Decimal  `json:"bulk_discount"`
	Region              string           `json:"region,omitempty"`
	TaxRate             decimal.Decimal  `json:"tax_rate"`
	Totals
}

// Calculate runs the advanced pipeline: line discounts, then the tier
// discount, then the bulk discount once the line subtotal exceeds
// BulkThreshold, then regional tax on what remains.
func (p PricingPolicy) Calculate(lines []PricedLine, tier CustomerTier, region string) Calculation {
	calc := Calculation{
		Lines:  make([]CalculatedLine, 0, len(lines)),
		Tier:   tier,
		Region: strings.ToUpper(strings.TrimSpace(region)),
	}
	if calc.Tier == "" {
		calc.Tier = TierRetail
	}

	lineSubtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	for i, l := range lines {
		la := ComputeLine(l.UnitPrice, l.Quantity, l.DiscountPercent)
		lineSubtotal = lineSubtotal.Add(la.Total)
		lineDiscounts = lineDiscounts.Add(la.Discount)
		calc.Lines = append(calc.Lines, CalculatedLine{
			LineNumber:      i + 1,
			VariantID:       l.VariantID,
			MaterialID:      l.MaterialID,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  la.Discount,
			LineTotal:       la.Total,
		})
	}
	calc.LineSubtotal = lineSubtotal

	calc.TierDiscountPercent = p.TierDiscount(tier)
	calc.TierDiscount = lineSubtotal.Mul(calc.TierDiscountPercent).Div(hundred).Round(moneyPlaces)
	afterTier := lineSubtotal.Sub(calc.TierDiscount)

	calc.BulkDiscount = decimal.Zero
	calc.BulkDiscountPercent = decimal.Zero
	if p.BulkDiscountPercent.IsPositive() && lineSubtotal.GreaterThan(p.BulkThreshold) {
		calc.BulkDiscountPercent = p.BulkDiscountPercent
		calc.BulkDiscount = afterTier.Mul(p.BulkDiscountPercent).Div(hundred).Round(moneyPlaces)
	}

	calc.TaxRate = p.TaxRateFor(region)
	discount := lineDiscounts.Add(calc.TierDiscount).Add(calc.BulkDiscount)
	calc.Totals = totalsFrom(afterTier.Sub(calc.BulkDiscount), discount, calc.TaxRate)
	return calc
}
