package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PricingSource resolves the effective catalog price of a variant/material
// pair on a date. found=false means no record is effective; it is not an error.
type PricingSource interface {
	CurrentPrice(ctx context.Context, variantID, materialID uuid.UUID, asOf time.Time) (price decimal.Decimal, found bool, err error)
}

type pricingResolver struct {
	pool *pgxpool.Pool
}

// NewPricingResolver reads product_pricing. Overlapping records are
// tolerated: the latest effective_date wins.
func NewPricingResolver(pool *pgxpool.Pool) PricingSource {
	return &pricingResolver{pool: pool}
}

func (r *pricingResolver) CurrentPrice(ctx context.Context, variantID, materialID uuid.UUID, asOf time.Time) (decimal.Decimal, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_variant_id, box_material_id, price, effective_date, expiration_date, is_active
		FROM product_pricing
		WHERE product_variant_id = $1
		  AND box_material_id = $2
		  AND is_active = true
		  AND effective_date <= $3
		  AND (expiration_date IS NULL OR expiration_date > $3)
	`, variantID, materialID, dateOnly(asOf))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to query pricing: %w", err)
	}
	records, err := scanPricingRecords(rows)
	if err != nil {
		return decimal.Zero, false, err
	}

	rec, ok := SelectEffective(records, asOf)
	if !ok {
		return decimal.Zero, false, nil
	}
	return rec.Price, true, nil
}

func scanPricingRecords(rows pgxRows) ([]PricingRecord, error) {
	defer rows.Close()
	var records []PricingRecord
	for rows.Next() {
		var rec PricingRecord
		if err := rows.Scan(&rec.ID, &rec.ProductVariantID, &rec.BoxMaterialID, &rec.Price,
			&rec.EffectiveDate, &rec.ExpirationDate, &rec.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan pricing record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pricing records: %w", err)
	}
	return records, nil
}

// SelectEffective picks the record pricing the pair on asOf. When several
// overlap, the latest EffectiveDate wins; equal dates fall back to the
// lexically greatest ID so the choice never depends on row order.
func SelectEffective(records []PricingRecord, asOf time.Time) (PricingRecord, bool) {
	candidates := make([]PricingRecord, 0, len(records))
	for _, rec := range records {
		if rec.EffectiveOn(asOf) {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return PricingRecord{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := dateOnly(candidates[i].EffectiveDate), dateOnly(candidates[j].EffectiveDate)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return candidates[i].ID.String() > candidates[j].ID.String()
	})
	return candidates[0], true
}
