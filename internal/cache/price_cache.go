// Package cache provides a Redis read-through cache in front of the catalog
// price lookup.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quote-engine/internal/core"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultTTL = 5 * time.Minute

// PriceCache decorates a core.PricingSource. Hits skip the source; misses
// are filled from it. Absent prices are never cached so a newly added
// pricing record becomes visible immediately. Redis failures degrade to the
// source.
type PriceCache struct {
	client *redis.Client
	source core.PricingSource
	ttl    time.Duration
	log    zerolog.Logger
}

var _ core.PricingSource = (*PriceCache)(nil)

func NewPriceCache(client *redis.Client, source core.PricingSource, ttl time.Duration, log zerolog.Logger) *PriceCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PriceCache{client: client, source: source, ttl: ttl, log: log}
}

func (c *PriceCache) CurrentPrice(ctx context.Context, variantID, materialID uuid.UUID, asOf time.Time) (decimal.Decimal, bool, error) {
	key := priceKey(variantID, materialID, asOf)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		price, perr := decimal.NewFromString(cached)
		if perr == nil {
			return price, true, nil
		}
		c.log.Warn().Str("key", key).Str("value", cached).Msg("discarding malformed cached price")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("price cache read failed")
	}

	price, found, err := c.source.CurrentPrice(ctx, variantID, materialID, asOf)
	if err != nil || !found {
		return price, found, err
	}

	if err := c.client.Set(ctx, key, price.String(), c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("price cache write failed")
	}
	return price, true, nil
}

// Invalidate drops every cached date of a variant/material pair.
func (c *PriceCache) Invalidate(ctx context.Context, variantID, materialID uuid.UUID) error {
	pattern := fmt.Sprintf("price:%s:%s:*", variantID, materialID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("price cache scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("price cache delete failed: %w", err)
	}
	return nil
}

func priceKey(variantID, materialID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("price:%s:%s:%s", variantID, materialID, asOf.Format("2006-01-02"))
}
