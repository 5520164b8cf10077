// worker runs the background side of the quote engine: the periodic expiry
// sweep (asynq, needs REDIS_URL) and the outbox relay to Kafka (needs
// KAFKA_BROKERS). Either half is skipped when its dependency is unset.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quote-engine/internal/config"
	"quote-engine/internal/core"
	"quote-engine/internal/db"
	"quote-engine/internal/logger"
	"quote-engine/internal/publisher"
	"quote-engine/internal/scheduler"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "quote-worker"})
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

	g, gctx := errgroup.WithContext(ctx)
	started := 0

	if cfg.RedisURL != "" {
		quoteService := core.NewQuoteService(pool, core.NewPricingResolver(pool), core.NewSequenceGenerator(), core.QuoteConfig{
			DefaultTaxRate: cfg.QuoteTaxRate,
			ValidityDays:   cfg.QuoteValidityDays,
		})
		worker, err := scheduler.NewWorker(cfg.RedisURL, cfg.ExpireSchedule, quoteService, log)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		g.Go(func() error { return worker.Run(gctx) })
		started++
		log.Info().Str("schedule", cfg.ExpireSchedule).Msg("expiry worker started")
	} else {
		log.Warn().Msg("REDIS_URL not set, expiry sweep disabled")
	}

	if len(cfg.KafkaBrokers) > 0 {
		writer := publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer writer.Close()
		poller := publisher.NewOutboxPoller(core.NewOutboxStore(pool), writer, time.Second, log)
		g.Go(func() error {
			poller.Run(gctx)
			return nil
		})
		started++
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("outbox publisher started")
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set, outbox publishing disabled")
	}

	if started == 0 {
		log.Fatal().Msg("nothing to run: set REDIS_URL and/or KAFKA_BROKERS")
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("worker")
	}
	log.Info().Msg("worker stopped")
}
