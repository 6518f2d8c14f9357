// FILE: broker.go
// Package main – Broker abstractions shared by all execution backends.
//
// This file defines the minimal interface the level loop needs to talk to a
// market-execution backend (paper or real):
//   • Broker interface: price lookup, symbol trading rules, market order by base qty
//   • Common types: OrderSide, Fill, PlacedOrder, SymbolRules
//   • avgFillPrice: volume-weighted fill price with quoted-price fallback
//
// Two concrete implementations live in separate files:
//   • broker_paper.go   – in-memory paper broker (no external calls)
//   • broker_binance.go – Binance Spot REST/HMAC client
package main

import (
	"context"
	"time"
)

// OrderSide is the side of a trade.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Fill is one matched execution slice of an order as reported by the venue.
type Fill struct {
	Price float64
	Qty   float64
}

// PlacedOrder is a normalized view of an accepted market order.
// Market orders are all-or-nothing at this boundary: once the venue accepts
// the order, the response (ExecutedQty + Fills) is treated as final.
type PlacedOrder struct {
	ID          string
	ProductID   string
	Side        OrderSide
	Price       float64 // venue-quoted price field; usually 0 for market orders with fills
	ExecutedQty float64 // filled base quantity
	Fills       []Fill
	CreateTime  time.Time
}

// SymbolRules are the per-pair trading constraints, loaded once at startup
// and immutable afterwards.
type SymbolRules struct {
	StepSize    float64 // LOT_SIZE: smallest legal base-quantity increment
	MinNotional float64 // minimum legal order value in quote currency
}

// Broker is the minimal surface the bot needs to operate.
type Broker interface {
	Name() string
	GetNowPrice(ctx context.Context, product string) (float64, error)
	GetSymbolRules(ctx context.Context, product string) (SymbolRules, error)
	PlaceMarketBase(ctx context.Context, product string, side OrderSide, baseQty float64) (*PlacedOrder, error)
}

// avgFillPrice returns the volume-weighted mean price across an order's fills.
// Orders without fills fall back to the venue-quoted price field, then 0.
func avgFillPrice(o *PlacedOrder) float64 {
	if o == nil {
		return 0
	}
	if len(o.Fills) == 0 {
		return o.Price
	}
	var value, qty float64
	for _, f := range o.Fills {
		value += f.Price * f.Qty
		qty += f.Qty
	}
	if qty <= 0 {
		return 0
	}
	return value / qty
}
