package config

import (
	"fmt"
	"os"
	"strings"

	"quote-engine/internal/core"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// policyFile is the YAML shape of the pricing policy. Amounts are strings so
// they parse exactly into decimals.
type policyFile struct {
	TierDiscounts map[string]string `yaml:"tier_discounts"`
	Bulk          struct {
		Threshold       string `yaml:"threshold"`
		DiscountPercent string `yaml:"discount_percent"`
	} `yaml:"bulk"`
	Tax struct {
		Default string            `yaml:"default"`
		Regions map[string]string `yaml:"regions"`
	} `yaml:"tax"`
}

// DefaultPolicy is used when no policy file is configured.
func DefaultPolicy() core.PricingPolicy {
	return core.PricingPolicy{
		TierDiscounts: map[core.CustomerTier]decimal.Decimal{
			core.TierRetail:     decimal.Zero,
			core.TierContractor: decimal.NewFromInt(5),
			core.TierDealer:     decimal.NewFromInt(10),
			core.TierWholesale:  decimal.NewFromInt(15),
		},
		BulkThreshold:       decimal.NewFromInt(10000),
		BulkDiscountPercent: decimal.NewFromInt(3),
		RegionTaxRates:      map[string]decimal.Decimal{},
		DefaultTaxRate:      decimal.Zero,
	}
}

// LoadPolicy reads the policy at path, or returns DefaultPolicy when path is empty.
func LoadPolicy(path string) (core.PricingPolicy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.PricingPolicy{}, fmt.Errorf("read pricing policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML policy data. Keys left out keep their defaults.
func ParsePolicy(data []byte) (core.PricingPolicy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return core.PricingPolicy{}, fmt.Errorf("parse pricing policy: %w", err)
	}

	p := DefaultPolicy()

	for name, raw := range f.TierDiscounts {
		tier := core.CustomerTier(strings.ToLower(strings.TrimSpace(name)))
		if tier == "" || !tier.Valid() {
			return core.PricingPolicy{}, fmt.Errorf("pricing policy: unknown tier %q", name)
		}
		pct, err := parsePercent("tier_discounts."+name, raw)
		if err != nil {
			return core.PricingPolicy{}, err
		}
		p.TierDiscounts[tier] = pct
	}

	if f.Bulk.Threshold != "" {
		v, err := decimal.NewFromString(f.Bulk.Threshold)
		if err != nil || v.IsNegative() {
			return core.PricingPolicy{}, fmt.Errorf("pricing policy: bulk.threshold %q is not a non-negative amount", f.Bulk.Threshold)
		}
		p.BulkThreshold = v
	}
	if f.Bulk.DiscountPercent != "" {
		pct, err := parsePercent("bulk.discount_percent", f.Bulk.DiscountPercent)
		if err != nil {
			return core.PricingPolicy{}, err
		}
		p.BulkDiscountPercent = pct
	}

	if f.Tax.Default != "" {
		rate, err := parseRate("tax.default", f.Tax.Default)
		if err != nil {
			return core.PricingPolicy{}, err
		}
		p.DefaultTaxRate = rate
	}
	for region, raw := range f.Tax.Regions {
		rate, err := parseRate("tax.regions."+region, raw)
		if err != nil {
			return core.PricingPolicy{}, err
		}
		p.RegionTaxRates[strings.ToUpper(strings.TrimSpace(region))] = rate
	}

	return p, nil
}

func parsePercent(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("pricing policy: %s %q must be a percent between 0 and 100", field, raw)
	}
	return v, nil
}

func parseRate(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("pricing policy: %s %q must be a rate between 0 and 1", field, raw)
	}
	return v, nil
}
