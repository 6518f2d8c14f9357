// FILE: live.go
// Package main – The polling loop driving the level strategy.
//
// runLive drives the bot in real time:
//   • Every tick: fetch the current price, feed the Trader, log the report.
//   • Sleep intervalSec AFTER the tick completes (cadence is interval plus
//     whatever the tick took; this is deliberately not a fixed-rate ticker).
//   • Any failure inside a tick is logged, followed by the error cooldown,
//     and the loop resumes with state unchanged. Nothing in a tick is fatal.
//   • ctx cancellation (SIGINT/SIGTERM) is observed at the top of each tick
//     and during sleeps; an in-flight exchange call is not cancelled mid-call.
//
// Price source: REST poll by default; when a websocket feed is wired in and
// fresh, its last streamed price is used instead (see ws_feed.go).

package main

import (
	"context"
	"log"
	"time"
)

// runLive executes the polling loop with cadence intervalSec (seconds).
func runLive(ctx context.Context, trader *Trader, feed *PriceFeed, intervalSec int) {
	cfg := trader.cfg
	if intervalSec <= 0 {
		intervalSec = cfg.PollInterval()
	}
	interval := time.Duration(intervalSec) * time.Second
	cooldown := time.Duration(cfg.ErrorCooldown()) * time.Second

	log.Printf("Starting %s — product=%s dry_run=%v", trader.broker.Name(), cfg.ProductID, cfg.DryRun)
	log.Printf("[SAFETY] BAND=[%d,%d] | TRADE_NOTIONAL_USD=%.2f | LEVEL_EPSILON=%g | POLL=%ds | COOLDOWN=%ds",
		cfg.MinLevel, cfg.MaxLevel, cfg.TradeNotionalUSD, cfg.LevelEpsilon, intervalSec, cfg.ErrorCooldown())
	log.Printf("[BOOT] rules: step_size=%.8f min_notional=%.2f", trader.rules.StepSize, trader.rules.MinNotional)

	for {
		select {
		case <-ctx.Done():
			log.Println("shutdown")
			return
		default:
		}

		price, src, err := currentPrice(ctx, trader, feed)
		if err != nil {
			mtxTickErrors.Inc()
			log.Printf("[ERROR] price fetch: %v (cooldown %s)", err, cooldown)
			sleepCtx(ctx, cooldown)
			continue
		}
		mtxLastPrice.Set(price)
		log.Printf("[TICK] price=%.4f source=%s", price, src)

		msg, err := trader.step(ctx, price)
		if err != nil {
			mtxTickErrors.Inc()
			log.Printf("[ERROR] step: %v (cooldown %s)", err, cooldown)
			sleepCtx(ctx, cooldown)
			continue
		}
		mtxTicks.Inc()
		log.Printf("%s", msg)

		sleepCtx(ctx, interval)
	}
}

// currentPrice prefers a fresh streamed price and falls back to a REST poll.
func currentPrice(ctx context.Context, trader *Trader, feed *PriceFeed) (float64, string, error) {
	if feed != nil {
		if px, ok := feed.Last(); ok {
			return px, "ws", nil
		}
	}
	px, err := trader.broker.GetNowPrice(ctx, trader.cfg.ProductID)
	if err != nil {
		return 0, "", err
	}
	return px, "rest", nil
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
