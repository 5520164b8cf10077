// Package config loads process configuration from the environment and the
// optional pricing policy file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the runtime configuration shared by every binary.
type Config struct {
	DatabaseURL       string
	ServerPort        string
	AllowedOrigins    string
	LogLevel          string
	LogPretty         bool
	RedisURL          string
	PriceCacheTTL     time.Duration
	KafkaBrokers      []string
	KafkaTopic        string
	QuoteTaxRate      decimal.Decimal
	QuoteValidityDays int
	PricingPolicyFile string
	ExpireSchedule    string
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		DatabaseURL:       get("DATABASE_URL", ""),
		ServerPort:        get("SERVER_PORT", "8080"),
		AllowedOrigins:    get("ALLOWED_ORIGINS", ""),
		LogLevel:          get("LOG_LEVEL", "info"),
		RedisURL:          get("REDIS_URL", ""),
		KafkaTopic:        get("KAFKA_TOPIC", "quote-events"),
		PricingPolicyFile: get("PRICING_POLICY_FILE", ""),
		ExpireSchedule:    get("EXPIRE_SCHEDULE", "@every 15m"),
	}

	var err error
	if cfg.LogPretty, err = strconv.ParseBool(get("LOG_PRETTY", "false")); err != nil {
		return Config{}, fmt.Errorf("LOG_PRETTY: %w", err)
	}
	if cfg.PriceCacheTTL, err = time.ParseDuration(get("PRICE_CACHE_TTL", "5m")); err != nil {
		return Config{}, fmt.Errorf("PRICE_CACHE_TTL: %w", err)
	}
	if cfg.PriceCacheTTL <= 0 {
		return Config{}, fmt.Errorf("PRICE_CACHE_TTL must be positive")
	}

	cfg.QuoteTaxRate, err = decimal.NewFromString(get("QUOTE_TAX_RATE", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("QUOTE_TAX_RATE: %w", err)
	}
	if cfg.QuoteTaxRate.IsNegative() || cfg.QuoteTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("QUOTE_TAX_RATE must be between 0 and 1, got %s", cfg.QuoteTaxRate)
	}

	if cfg.QuoteValidityDays, err = strconv.Atoi(get("QUOTE_VALIDITY_DAYS", "30")); err != nil {
		return Config{}, fmt.Errorf("QUOTE_VALIDITY_DAYS: %w", err)
	}
	if cfg.QuoteValidityDays <= 0 {
		return Config{}, fmt.Errorf("QUOTE_VALIDITY_DAYS must be positive")
	}

	for _, b := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	return cfg, nil
}
