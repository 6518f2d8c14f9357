// FILE: config.go
// Package main – Runtime configuration model and loader.
//
// This file defines the Config struct (all the knobs the bot uses) and a
// helper to populate it from environment variables. The .env file is read
// by loadBotEnv() (see env.go), so you can tune behavior without exports.
//
// Typical flow (see main.go):
//   loadBotEnv()
//   cfg := loadConfigFromEnv()
package main

// Config holds all runtime knobs for trading and operations.
// None of these are mutated after startup.
type Config struct {
	// Trading target
	ProductID string // e.g., "AVAX-USD" (mapped to "AVAXUSDT" by the Binance broker)

	// Strategy
	TradeNotionalUSD float64 // target quote value per entry; venue MinNotional wins if larger
	MinLevel         int     // lowest admissible integer entry level (inclusive)
	MaxLevel         int     // highest admissible integer entry level (inclusive)
	LevelEpsilon     float64 // tolerance for "price is an integer"

	// Loop control
	PollIntervalSec  int // sleep between ticks after each tick completes
	ErrorCooldownSec int // sleep after a failed tick before resuming

	// Safety
	DryRun bool // evaluate and log decisions without placing orders

	// Ops
	Port      int    // metrics/healthz listener
	JournalDB string // optional sqlite trade-journal path; empty disables

	// Streaming price (optional; REST polling is default and fallback)
	UseWSPrice   bool
	WSStaleAfter int // seconds after which a streamed price is considered stale
}

// loadConfigFromEnv reads the process env (already hydrated by loadBotEnv())
// and returns a Config with sane defaults if keys are missing.
func loadConfigFromEnv() Config {
	return Config{
		ProductID: getEnv("PRODUCT_ID", "AVAX-USD"),

		TradeNotionalUSD: getEnvFloat("TRADE_NOTIONAL_USD", 1.0),
		MinLevel:         getEnvInt("MIN_LEVEL", 10),
		MaxLevel:         getEnvInt("MAX_LEVEL", 148),
		LevelEpsilon:     getEnvFloat("LEVEL_EPSILON", 1e-6),

		PollIntervalSec:  getEnvInt("POLL_INTERVAL_SEC", 5),
		ErrorCooldownSec: getEnvInt("ERROR_COOLDOWN_SEC", 5),

		DryRun: getEnvBool("DRY_RUN", true),

		Port:      getEnvInt("PORT", 8080),
		JournalDB: getEnv("JOURNAL_DB", ""),

		UseWSPrice:   getEnvBool("USE_WS_PRICE", false),
		WSStaleAfter: getEnvInt("WS_STALE_AFTER_SEC", 10),
	}
}

// PollInterval returns the tick spacing in seconds, clamped to >= 1.
func (c *Config) PollInterval() int {
	if c.PollIntervalSec <= 0 {
		return 5
	}
	return c.PollIntervalSec
}

// ErrorCooldown returns the post-error sleep in seconds, clamped to >= 1.
func (c *Config) ErrorCooldown() int {
	if c.ErrorCooldownSec <= 0 {
		return 5
	}
	return c.ErrorCooldownSec
}
