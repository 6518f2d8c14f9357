// FILE: trader.go
// Package main – The single-position state machine.
//
// What’s here:
//   • Position: the one mutable piece of trading state (FLAT or LONG)
//   • Trader: holds config, broker, loaded symbol rules, realized PnL
//   • step(): the per-tick transition that may BUY, SELL, or wait
//
// Concurrency design:
//   - The Trader is owned by the live loop goroutine; one tick completes
//     fully (including any order round-trip) before the next begins, so no
//     two orders are ever in flight at once and no locking is needed.
//
// Strategy (deterministic, no model):
//   - FLAT:  buy TradeNotionalUSD worth when the price sits exactly on an
//     integer level inside [MinLevel, MaxLevel].
//   - LONG:  sell the full held quantity when the price reaches the integer
//     level one above the entry level. No stop-loss, no early exit.
//   - A failed order leaves the state exactly as it was; the next matching
//     tick retries from scratch.

package main

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Position is the sole mutable trading state. When Open is false the other
// fields are zero, never stale; entry and exit assign the whole value at once.
type Position struct {
	Open          bool
	EntryLevel    int     // integer price level the entry fired on
	AvgEntryPrice float64 // volume-weighted fill price of the opening order
	Qty           float64 // executed base quantity of the opening order
	OpenTime      time.Time
}

type Trader struct {
	cfg     Config
	broker  Broker
	rules   SymbolRules // loaded once at startup, read-only afterwards
	journal *Journal    // nil when journaling is disabled

	pos         Position
	realizedUSD float64 // cumulative realized PnL this process
}

func NewTrader(cfg Config, broker Broker, rules SymbolRules, journal *Journal) *Trader {
	return &Trader{cfg: cfg, broker: broker, rules: rules, journal: journal}
}

// RealizedUSD returns cumulative realized PnL since process start.
func (t *Trader) RealizedUSD() float64 { return t.realizedUSD }

// statusLine mirrors the per-tick position report.
func (t *Trader) statusLine() string {
	if t.pos.Open {
		return fmt.Sprintf("LONG level=%d vwap=%.4f qty=%.6f", t.pos.EntryLevel, t.pos.AvgEntryPrice, t.pos.Qty)
	}
	return "FLAT"
}

// step runs one tick of the state machine for the given price and returns a
// human-readable report. An error means the tick failed mid-flight (order or
// transport); state is guaranteed untouched in that case and the loop applies
// its cooldown.
func (t *Trader) step(ctx context.Context, price float64) (string, error) {
	if price <= 0 {
		return "", fmt.Errorf("non-positive price %v", price)
	}
	if !t.pos.Open {
		return t.stepFlat(ctx, price)
	}
	return t.stepLong(ctx, price)
}

// stepFlat evaluates an entry: integer level, inside the band, sizeable.
func (t *Trader) stepFlat(ctx context.Context, price float64) (string, error) {
	if !isIntegerLevel(price, t.cfg.LevelEpsilon) {
		return fmt.Sprintf("WAIT price=%.4f not on an integer level | %s", price, t.statusLine()), nil
	}
	level := levelOf(price)
	if level < t.cfg.MinLevel || level > t.cfg.MaxLevel {
		return fmt.Sprintf("WAIT level=%d outside band [%d,%d] | %s", level, t.cfg.MinLevel, t.cfg.MaxLevel, t.statusLine()), nil
	}
	qty := sizeForNotional(price, t.cfg.TradeNotionalUSD, t.rules)
	if qty <= 0 {
		return fmt.Sprintf("WAIT level=%d sized to zero (step=%.8f minNotional=%.2f) | %s",
			level, t.rules.StepSize, t.rules.MinNotional, t.statusLine()), nil
	}

	if t.cfg.DryRun {
		mtxDecisions.WithLabelValues("buy").Inc()
		return fmt.Sprintf("DRY_RUN would BUY qty=%.6f at level=%d | %s", qty, level, t.statusLine()), nil
	}

	mtxDecisions.WithLabelValues("buy").Inc()
	order, err := t.broker.PlaceMarketBase(ctx, t.cfg.ProductID, SideBuy, qty)
	if err != nil {
		return "", fmt.Errorf("buy at level %d: %w", level, err)
	}
	if order.ExecutedQty <= 0 {
		// Accepted but nothing filled; opening a zero-quantity position would
		// violate the state invariant, so treat it like a failed order.
		return "", fmt.Errorf("buy at level %d: venue reported zero executed quantity (order %s)", level, order.ID)
	}
	vwap := avgFillPrice(order)

	t.pos = Position{
		Open:          true,
		EntryLevel:    level,
		AvgEntryPrice: vwap,
		Qty:           order.ExecutedQty,
		OpenTime:      order.CreateTime,
	}
	mtxOrders.WithLabelValues(t.broker.Name(), string(SideBuy)).Inc()
	mtxTrades.WithLabelValues("open").Inc()
	mtxPositionOpen.Set(1)
	if t.journal != nil {
		if err := t.journal.RecordEntry(t.cfg.ProductID, level, vwap, order.ExecutedQty, order.ID); err != nil {
			log.Printf("[JOURNAL] entry record failed: %v", err)
		}
	}
	return fmt.Sprintf("[ENTRY] BUY confirmed level=%d vwap=%.4f qty=%.6f order=%s", level, vwap, order.ExecutedQty, order.ID), nil
}

// stepLong waits for the take-profit level (entry+1) and closes the position.
func (t *Trader) stepLong(ctx context.Context, price float64) (string, error) {
	target := t.pos.EntryLevel + 1
	if !isIntegerLevel(price, t.cfg.LevelEpsilon) || levelOf(price) != target {
		return fmt.Sprintf("HOLD price=%.4f waiting SELL at level=%d | %s", price, target, t.statusLine()), nil
	}

	mtxDecisions.WithLabelValues("sell").Inc()
	order, err := t.broker.PlaceMarketBase(ctx, t.cfg.ProductID, SideSell, t.pos.Qty)
	if err != nil {
		// Position stays open; the next tick that reaches the target retries.
		return "", fmt.Errorf("sell at level %d: %w", target, err)
	}
	if order.ExecutedQty <= 0 {
		// Accepted but nothing filled; closing on a zero-quantity sell would
		// book a bogus loss against a VWAP of zero while the base asset is
		// still held, so treat it like a failed order and retry later.
		return "", fmt.Errorf("sell at level %d: venue reported zero executed quantity (order %s)", target, order.ID)
	}
	if order.ExecutedQty < t.pos.Qty-t.rules.StepSize/2 {
		// The venue filled less than requested on a "final" market order; the
		// residual base quantity is no longer tracked by this state machine.
		log.Printf("[WARN] sell filled %.8f of %.8f; residual base quantity untracked", order.ExecutedQty, t.pos.Qty)
	}
	sellVWAP := avgFillPrice(order)
	pnl := (sellVWAP - t.pos.AvgEntryPrice) * t.pos.Qty

	mtxOrders.WithLabelValues(t.broker.Name(), string(SideSell)).Inc()
	if pnl >= 0 {
		mtxTrades.WithLabelValues("win").Inc()
	} else {
		mtxTrades.WithLabelValues("loss").Inc()
	}
	t.realizedUSD += pnl
	mtxRealizedPnL.Set(t.realizedUSD)
	mtxPositionOpen.Set(0)
	if t.journal != nil {
		if err := t.journal.RecordExit(t.cfg.ProductID, target, sellVWAP, t.pos.Qty, pnl, order.ID); err != nil {
			log.Printf("[JOURNAL] exit record failed: %v", err)
		}
	}

	entryVWAP := t.pos.AvgEntryPrice
	t.pos = Position{} // back to FLAT; all fields cleared together

	return fmt.Sprintf("[EXIT] SELL confirmed level=%d vwap=%.4f pnl=%.4f (entry vwap=%.4f) order=%s",
		target, sellVWAP, pnl, entryVWAP, order.ID), nil
}
