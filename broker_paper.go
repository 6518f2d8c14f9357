// FILE: broker_paper.go
// Package main – In-memory paper broker (no external calls).
//
// This broker simulates execution using the latest known price. It’s used for
// dry runs and tests: orders here never touch the exchange. The simulated
// market order fills in a single slice at the current price.
//
// Methods:
//   • Name() string
//   • GetNowPrice(ctx, product) (float64, error)
//   • GetSymbolRules(ctx, product) (SymbolRules, error)   // env-tunable
//   • PlaceMarketBase(ctx, product, side, baseQty) (*PlacedOrder, error)
package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PaperBroker keeps a single mutable price used to simulate fills.
type PaperBroker struct {
	price float64
	mu    sync.Mutex
}

func NewPaperBroker() *PaperBroker { return &PaperBroker{} }

func (p *PaperBroker) Name() string { return "paper" }

// SetPrice overrides the simulated market price (tests, replays).
func (p *PaperBroker) SetPrice(px float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.price = px
}

func (p *PaperBroker) GetNowPrice(ctx context.Context, product string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.price <= 0 {
		p.price = getEnvFloat("PAPER_PRICE", 25.0) // bootstrap price if none seen yet
	}
	return p.price, nil
}

// GetSymbolRules returns env-driven paper trading rules.
func (p *PaperBroker) GetSymbolRules(ctx context.Context, product string) (SymbolRules, error) {
	return SymbolRules{
		StepSize:    getEnvFloat("PAPER_STEP_SIZE", 0.01),
		MinNotional: getEnvFloat("PAPER_MIN_NOTIONAL", 5.0),
	}, nil
}

// PlaceMarketBase simulates a market order filled whole at the current price.
func (p *PaperBroker) PlaceMarketBase(ctx context.Context, product string, side OrderSide, baseQty float64) (*PlacedOrder, error) {
	if baseQty <= 0 {
		return nil, errors.New("baseQty must be > 0")
	}
	price, _ := p.GetNowPrice(ctx, product)
	return &PlacedOrder{
		ID:          uuid.New().String(),
		ProductID:   product,
		Side:        side,
		ExecutedQty: baseQty,
		Fills:       []Fill{{Price: price, Qty: baseQty}},
		CreateTime:  time.Now().UTC(),
	}, nil
}
