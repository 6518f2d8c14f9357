// FILE: live_test.go
package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCurrentPrice_PrefersFreshFeed(t *testing.T) {
	fb := &fakeBroker{price: 20.0}
	tr := NewTrader(testConfig(), fb, testRules(), nil)

	feed := NewPriceFeed("AVAX-USD", time.Minute)
	feed.set(21.5)

	px, src, err := currentPrice(context.Background(), tr, feed)
	if err != nil {
		t.Fatalf("currentPrice: %v", err)
	}
	if src != "ws" || px != 21.5 {
		t.Errorf("got %v from %q, want 21.5 from ws", px, src)
	}
}

func TestCurrentPrice_FallsBackToRest(t *testing.T) {
	fb := &fakeBroker{price: 20.0}
	tr := NewTrader(testConfig(), fb, testRules(), nil)

	// No feed at all.
	px, src, err := currentPrice(context.Background(), tr, nil)
	if err != nil {
		t.Fatalf("currentPrice: %v", err)
	}
	if src != "rest" || px != 20.0 {
		t.Errorf("got %v from %q, want 20 from rest", px, src)
	}

	// Feed present but stale.
	feed := NewPriceFeed("AVAX-USD", time.Nanosecond)
	feed.set(99.0)
	time.Sleep(time.Millisecond)
	px, src, err = currentPrice(context.Background(), tr, feed)
	if err != nil {
		t.Fatalf("currentPrice: %v", err)
	}
	if src != "rest" || px != 20.0 {
		t.Errorf("got %v from %q, want rest fallback", px, src)
	}
}

func TestRunLive_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTrader(testConfig(), &fakeBroker{price: 20.0}, testRules(), nil)

	done := make(chan struct{})
	go func() {
		runLive(ctx, tr, nil, 1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runLive did not stop on cancelled context")
	}
}

// flakyBroker fails the first N price fetches and/or placements, then behaves
// like a healthy venue. bought is closed on the first successful placement.
type flakyBroker struct {
	price     float64
	priceErrs int
	placeErrs int

	priceCalls int
	placeCalls int
	bought     chan struct{}
}

func (f *flakyBroker) Name() string { return "flaky" }

func (f *flakyBroker) GetNowPrice(ctx context.Context, product string) (float64, error) {
	f.priceCalls++
	if f.priceErrs > 0 {
		f.priceErrs--
		return 0, errors.New("venue unavailable")
	}
	return f.price, nil
}

func (f *flakyBroker) GetSymbolRules(ctx context.Context, product string) (SymbolRules, error) {
	return SymbolRules{StepSize: 0.01, MinNotional: 5}, nil
}

func (f *flakyBroker) PlaceMarketBase(ctx context.Context, product string, side OrderSide, baseQty float64) (*PlacedOrder, error) {
	f.placeCalls++
	if f.placeErrs > 0 {
		f.placeErrs--
		return nil, errors.New("order rejected")
	}
	if f.bought != nil {
		close(f.bought)
		f.bought = nil
	}
	return &PlacedOrder{
		ID:          "f-1",
		ProductID:   product,
		Side:        side,
		ExecutedQty: baseQty,
		Fills:       []Fill{{Price: f.price, Qty: baseQty}},
	}, nil
}

func TestRunLive_SurvivesPriceFailures(t *testing.T) {
	cfg := testConfig()
	cfg.PollIntervalSec = 1
	cfg.ErrorCooldownSec = 1

	bought := make(chan struct{})
	fb := &flakyBroker{price: 20.0, priceErrs: 2, bought: bought}
	tr := NewTrader(cfg, fb, testRules(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLive(ctx, tr, nil, 1)
		close(done)
	}()

	select {
	case <-bought:
	case <-time.After(15 * time.Second):
		t.Fatal("loop never recovered from price fetch failures")
	}
	cancel()
	<-done

	if fb.priceCalls < 3 {
		t.Errorf("price calls = %d, want at least 3 (2 failures then success)", fb.priceCalls)
	}
	if !tr.pos.Open {
		t.Error("expected an open position after recovery")
	}
}

func TestRunLive_SurvivesOrderFailures(t *testing.T) {
	cfg := testConfig()
	cfg.PollIntervalSec = 1
	cfg.ErrorCooldownSec = 1

	bought := make(chan struct{})
	fb := &flakyBroker{price: 20.0, placeErrs: 2, bought: bought}
	tr := NewTrader(cfg, fb, testRules(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLive(ctx, tr, nil, 1)
		close(done)
	}()

	select {
	case <-bought:
	case <-time.After(15 * time.Second):
		t.Fatal("loop never recovered from order placement failures")
	}
	cancel()
	<-done

	if fb.placeCalls != 3 {
		t.Errorf("place calls = %d, want 3 (2 rejections then fill)", fb.placeCalls)
	}
	if !tr.pos.Open {
		t.Error("expected an open position after recovery")
	}
}

func TestSleepCtx_CancelUnblocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	sleepCtx(ctx, time.Hour)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("sleepCtx held for %v after cancel", elapsed)
	}
}
