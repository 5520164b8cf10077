// migrate applies the embedded schema migrations.
//
// Usage: migrate [up|down|version]
package main

import (
	"os"

	"quote-engine/internal/config"
	"quote-engine/internal/db"
	"quote-engine/internal/logger"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "quote-migrate"})
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable not set")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migrate up")
		}
	case "down":
		if err := db.MigrateDown(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
	case "version":
	default:
		log.Fatal().Str("command", cmd).Msg("unknown command, expected up, down or version")
	}

	version, dirty, err := db.SchemaVersion(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("schema version")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Str("command", cmd).Msg("migrations done")
}
