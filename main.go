// FILE: main.go
// Package main – Program entrypoint and HTTP/metrics server.
//
// Boot sequence:
//   1) loadBotEnv()               – read .env (no shell exports required)
//   2) cfg := loadConfigFromEnv() – build runtime Config
//   3) wire broker (binance or paper) – live refuses to start without keys
//   4) start Prometheus /healthz server on cfg.Port
//   5) load symbol rules once (fatal if the pair is unknown)
//   6) runLive until SIGINT/SIGTERM
//
// Flags:
//   -paper            Use the in-memory paper broker instead of Binance
//   -interval <sec>   Poll interval override (default POLL_INTERVAL_SEC, 5)
//
// Example:
//   go run . -paper -interval 1

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ---- Flags ----
	var paper bool
	var intervalSec int
	flag.BoolVar(&paper, "paper", false, "Use the in-memory paper broker (no exchange calls)")
	flag.IntVar(&intervalSec, "interval", 0, "Poll interval in seconds (0 = POLL_INTERVAL_SEC)")
	flag.Parse()

	// ---- Environment & Config ----
	loadBotEnv()
	cfg := loadConfigFromEnv()

	// ---- Broker wiring ----
	var broker Broker
	if paper {
		broker = NewPaperBroker()
	} else {
		bb, err := NewBinanceBrokerFromEnv()
		if err != nil {
			log.Fatalf("binance broker init: %v", err)
		}
		broker = bb
	}

	// ---- HTTP metrics/health ----
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		log.Printf("serving metrics on :%d/metrics", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ---- Symbol rules (once, fatal on failure) ----
	rules, err := broker.GetSymbolRules(ctx, cfg.ProductID)
	if err != nil {
		log.Fatalf("symbol rules for %s: %v", cfg.ProductID, err)
	}

	// ---- Optional trade journal ----
	var journal *Journal
	if cfg.JournalDB != "" {
		journal, err = OpenJournal(cfg.JournalDB)
		if err != nil {
			log.Fatalf("journal init: %v", err)
		}
		defer journal.Close()
		log.Printf("[BOOT] journaling trades to %s", cfg.JournalDB)
	}

	// ---- Optional streamed price feed ----
	var feed *PriceFeed
	if cfg.UseWSPrice {
		feed = NewPriceFeed(cfg.ProductID, time.Duration(cfg.WSStaleAfter)*time.Second)
		go feed.Run(ctx)
	}

	trader := NewTrader(cfg, broker, rules, journal)
	runLive(ctx, trader, feed, intervalSec)

	// ---- Graceful shutdown for HTTP server ----
	shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
	defer c()
	_ = srv.Shutdown(shutdownCtx)
}
