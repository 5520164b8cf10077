// seed loads demo customers and catalog prices into an empty database so the
// API and CLI can be exercised locally. Pricing rows are idempotent; customers
// are only created when the customers table is empty. With REDIS_URL set,
// cached prices for the seeded pairs are dropped.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"

	"quote-engine/internal/cache"
	"quote-engine/internal/config"
	"quote-engine/internal/core"
	"quote-engine/internal/db"
	"quote-engine/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	variantBase   = uuid.MustParse("9f0c1a52-6d3e-4c1b-8a47-1b2f3c4d5e01")
	variantTall   = uuid.MustParse("9f0c1a52-6d3e-4c1b-8a47-1b2f3c4d5e02")
	materialOak   = uuid.MustParse("4a7d2e10-3b5c-4f8e-9d61-7e8f9a0b1c01")
	materialMaple = uuid.MustParse("4a7d2e10-3b5c-4f8e-9d61-7e8f9a0b1c02")
	materialBirch = uuid.MustParse("4a7d2e10-3b5c-4f8e-9d61-7e8f9a0b1c03")
)

type priceRow struct {
	variant, material uuid.UUID
	price             string
	effective         string
	expires           *string
}

func main() {
	cfg, err := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Service: "quote-seed"})
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	expired := "2025-01-01"
	prices := []priceRow{
		{variantBase, materialOak, "95.00", "2024-01-01", &expired},
		{variantBase, materialOak, "100.00", "2025-01-01", nil},
		{variantBase, materialMaple, "112.50", "2024-06-01", nil},
		{variantTall, materialOak, "150.00", "2024-01-01", nil},
		{variantTall, materialBirch, "50.00", "2024-01-01", nil},
	}

	log.Info().Int("rows", len(prices)).Msg("restoring catalog prices")
	for _, p := range prices {
		_, err := tx.Exec(ctx, `
			INSERT INTO product_pricing (product_variant_id, box_material_id, price, effective_date, expiration_date)
			VALUES ($1, $2, $3::numeric, $4::date, $5::date)
			ON CONFLICT (product_variant_id, box_material_id, effective_date) DO NOTHING
		`, p.variant, p.material, p.price, p.effective, p.expires)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to insert price")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to commit prices")
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opt)
		defer client.Close()
		priceCache := cache.NewPriceCache(client, core.NewPricingResolver(pool), cfg.PriceCacheTTL, log)
		for _, p := range prices {
			if err := priceCache.Invalidate(ctx, p.variant, p.material); err != nil {
				log.Warn().Err(err).Str("variant", p.variant.String()).Msg("failed to drop cached prices")
			}
		}
	}

	var customers int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&customers); err != nil {
		log.Fatal().Err(err).Msg("failed to count customers")
	}
	if customers > 0 {
		log.Info().Int("existing", customers).Msg("customers present, skipping")
		return
	}

	svc := core.NewCustomerService(pool, core.NewSequenceGenerator())
	for _, in := range []core.NewCustomerInput{
		{Name: "Dana Whitfield", Email: ptr("dana@example.com"), Tier: core.TierRetail, Region: ptr("CA")},
		{Name: "Rafael Ortiz", Company: ptr("Ortiz Remodeling"), Tier: core.TierContractor, Region: ptr("TX")},
		{Name: "Mei Tanaka", Company: ptr("Northside Kitchens"), Tier: core.TierDealer, Region: ptr("WA")},
	} {
		c, err := svc.CreateCustomer(ctx, in)
		if err != nil {
			log.Fatal().Err(err).Str("name", in.Name).Msg("failed to create customer")
		}
		log.Info().Str("number", c.CustomerNumber).Str("id", c.ID.String()).Msg("customer created")
	}
	log.Info().Msg("seed complete")
}

func ptr(s string) *string { return &s }
