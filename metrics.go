// FILE: metrics.go
// Package main – Prometheus metrics for observability.
//
// Exposes the metrics the bot updates during operation:
//   • bot_ticks_total               – Poll ticks completed
//   • bot_tick_errors_total         – Ticks that failed and hit the cooldown
//   • bot_decisions_total{signal}   – Trade signals raised (buy|sell)
//   • bot_orders_total{mode,side}   – Orders placed (mode: paper|binance)
//   • bot_trades_total{result}      – Trades by result (open|win|loss)
//   • bot_realized_pnl_usd          – Cumulative realized PnL (gauge)
//   • bot_last_price                – Last observed market price (gauge)
//   • bot_position_open             – 1 while LONG, 0 while FLAT (gauge)
//
// These are registered in init() and served by the HTTP handler started in
// main.go at /metrics (Prometheus text exposition format).

package main

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ticks_total",
			Help: "Poll ticks completed",
		},
	)

	mtxTickErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_tick_errors_total",
			Help: "Ticks that failed and triggered the error cooldown",
		},
	)

	mtxDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Trade signals raised",
		},
		[]string{"signal"},
	)

	mtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders placed",
		},
		[]string{"mode", "side"},
	)

	mtxTrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_trades_total",
			Help: "Trades counted by result (open|win|loss)",
		},
		[]string{"result"},
	)

	mtxRealizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_realized_pnl_usd",
			Help: "Cumulative realized PnL in USD since process start",
		},
	)

	mtxLastPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_last_price",
			Help: "Last observed market price",
		},
	)

	mtxPositionOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_position_open",
			Help: "1 while a position is open, 0 while flat",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxTicks, mtxTickErrors, mtxDecisions)
	prometheus.MustRegister(mtxOrders, mtxTrades)
	prometheus.MustRegister(mtxRealizedPnL, mtxLastPrice, mtxPositionOpen)
}
