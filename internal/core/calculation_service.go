package core

import (
	"context"
	"fmt"
	"time"
)

// CalculationService prices a prospective quote with the advanced policy
// without persisting anything.
type CalculationService interface {
	Calculate(ctx context.Context, req CalculationRequest) (*Calculation, error)
}

type calculationService struct {
	pricing   PricingSource
	customers CustomerService
	policy    PricingPolicy
	now       func() time.Time
}

func NewCalculationService(pricing PricingSource, customers CustomerService, policy PricingPolicy) CalculationService {
	return &calculationService{pricing: pricing, customers: customers, policy: policy, now: time.Now}
}

func (s *calculationService) Calculate(ctx context.Context, req CalculationRequest) (*Calculation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tier, region := req.Tier, req.Region
	if req.CustomerID != nil {
		c, err := s.customers.GetCustomer(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if tier == "" {
			tier = c.Tier
		}
		if region == "" && c.Region != nil {
			region = *c.Region
		}
	}

	asOf := dateOnly(s.now())
	if req.AsOf != nil {
		asOf = dateOnly(*req.AsOf)
	}

	lines := make([]PricedLine, 0, len(req.Items))
	for i, it := range req.Items {
		price, found, err := s.pricing.CurrentPrice(ctx, it.VariantID, it.MaterialID, asOf)
		if err != nil {
			return nil, fmt.Errorf("line %d: failed to resolve price: %w", i+1, err)
		}
		if !found {
			return nil, &PricingNotFoundError{LineNumber: i + 1, VariantID: it.VariantID, MaterialID: it.MaterialID, AsOf: asOf}
		}
		lines = append(lines, PricedLine{
			VariantID:       it.VariantID,
			MaterialID:      it.MaterialID,
			Quantity:        it.Quantity,
			UnitPrice:       price,
			DiscountPercent: it.DiscountPercent,
		})
	}

	calc := s.policy.Calculate(lines, tier, region)
	return &calc, nil
}
