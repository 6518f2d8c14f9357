// FILE: env.go
// Package main – Environment helpers for the level bot.
//
// This file provides:
//   1) Small helpers to read environment variables with sane defaults
//      (strings, ints, floats, bools).
//   2) loadBotEnv: hydrates the process env from a .env file via godotenv,
//      never overriding variables that are already exported.
//
// Notes:
//   • The bot never requires `export $(cat .env ...)`; keep editing .env
//     (or BOT_ENV_FILE) and restart.
//   • API credentials (BINANCE_API_KEY / BINANCE_API_SECRET) are consumed by
//     the Binance broker, not here.

package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// --------- Env helpers (used across files) ---------

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// --------- .env loader ---------

// loadBotEnv hydrates the process env from BOT_ENV_FILE (default ./bot.env).
// godotenv.Load never overrides keys already present in the environment, so
// exported variables always win over the file.
func loadBotEnv() {
	path := getEnv("BOT_ENV_FILE", "bot.env")
	if err := godotenv.Load(path); err != nil {
		log.Printf("env: %s not found, relying on process env", path)
		return
	}
	log.Printf("env: loaded %s", path)
}
