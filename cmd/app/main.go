// app is the one-shot operator CLI for the quote engine.
//
// Usage: app <command> [args...]   (run without arguments for the command list)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"quote-engine/internal/adapters/cli"
	"quote-engine/internal/app"
	"quote-engine/internal/config"
	"quote-engine/internal/core"
	"quote-engine/internal/db"
	"quote-engine/internal/logger"
	"quote-engine/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Service: "quote-cli"})
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	policy, err := config.LoadPolicy(cfg.PricingPolicyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("pricing policy")
	}

	pricing := core.NewPricingResolver(pool)
	seq := core.NewSequenceGenerator()
	quoteService := core.NewQuoteService(pool, pricing, seq, core.QuoteConfig{
		DefaultTaxRate: cfg.QuoteTaxRate,
		ValidityDays:   cfg.QuoteValidityDays,
	})
	customerService := core.NewCustomerService(pool, seq)
	calculationService := core.NewCalculationService(pricing, customerService, policy)
	svc := app.NewAppService(quoteService, customerService, calculationService, pricing)

	var opts []cli.Option
	if cfg.RedisURL != "" {
		jobs, err := scheduler.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis")
		}
		defer jobs.Close()
		opts = append(opts, cli.WithExpiryQueue(jobs))
	}

	if err := cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout, opts...); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			pool.Close()
			os.Exit(2)
		}
		pool.Close()
		log.Fatal().Err(err).Msg("command failed")
	}
}
