package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "quote-engine/internal/adapters/web"
	"quote-engine/internal/app"
	"quote-engine/internal/cache"
	"quote-engine/internal/config"
	"quote-engine/internal/core"
	"quote-engine/internal/db"
	"quote-engine/internal/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "quote-server"})
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	policy, err := config.LoadPolicy(cfg.PricingPolicyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("pricing policy")
	}

	var pricing core.PricingSource = core.NewPricingResolver(pool)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opt)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, price cache will fall through to postgres")
		}
		pricing = cache.NewPriceCache(client, pricing, cfg.PriceCacheTTL, log)
		log.Info().Dur("ttl", cfg.PriceCacheTTL).Msg("price cache enabled")
	}

	seq := core.NewSequenceGenerator()
	quoteService := core.NewQuoteService(pool, pricing, seq, core.QuoteConfig{
		DefaultTaxRate: cfg.QuoteTaxRate,
		ValidityDays:   cfg.QuoteValidityDays,
	})
	customerService := core.NewCustomerService(pool, seq)
	calculationService := core.NewCalculationService(pricing, customerService, policy)

	svc := app.NewAppService(quoteService, customerService, calculationService, pricing)
	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, log, pool.Ping)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
	log.Info().Msg("server stopped")
}
