// FILE: ws_feed.go
// Package main – Optional streamed price source (Binance spot websocket).
//
// PriceFeed keeps the most recent trade price from the symbol's @aggTrade
// stream. The live loop prefers this value when it is fresh and falls back to
// the REST poll otherwise, so a dead socket degrades to plain polling rather
// than stalling the bot. Enabled with USE_WS_PRICE=1.
//
// The dial loop reconnects forever with a short pause; it holds no trading
// state, so dropping messages is always safe.

package main

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type PriceFeed struct {
	url        string
	staleAfter time.Duration

	mu    sync.Mutex
	price float64
	at    time.Time
}

// NewPriceFeed builds a feed for the product's Binance spot aggTrade stream.
func NewPriceFeed(product string, staleAfter time.Duration) *PriceFeed {
	symbol := strings.ToLower(mapProductToSymbol(product))
	return &PriceFeed{
		url:        "wss://stream.binance.com:9443/ws/" + symbol + "@aggTrade",
		staleAfter: staleAfter,
	}
}

// Last returns the most recent streamed price and whether it is still fresh.
func (f *PriceFeed) Last() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.price <= 0 || time.Since(f.at) > f.staleAfter {
		return 0, false
	}
	return f.price, true
}

func (f *PriceFeed) set(px float64) {
	f.mu.Lock()
	f.price = px
	f.at = time.Now()
	f.mu.Unlock()
}

// Run dials and reads until ctx is cancelled, reconnecting on any error.
func (f *PriceFeed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			log.Printf("[WS] dial error: %v", err)
			sleepCtx(ctx, 5*time.Second)
			continue
		}
		log.Printf("[WS] connected %s", f.url)

		// Close the socket when ctx ends so ReadJSON unblocks.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		for {
			var msg struct {
				EventType string `json:"e"`
				Symbol    string `json:"s"`
				Price     string `json:"p"`
				TradeTime int64  `json:"T"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					log.Printf("[WS] read error: %v", err)
				}
				_ = conn.Close()
				break
			}
			px, err := strconv.ParseFloat(msg.Price, 64)
			if err != nil || px <= 0 {
				continue
			}
			f.set(px)
		}
		close(done)

		sleepCtx(ctx, 2*time.Second)
	}
}
