// FILE: levels.go
// Package main – Integer price-level math and order sizing.
//
// The whole strategy hangs on two pure pieces:
//   • isIntegerLevel/levelOf: epsilon-windowed "is this price a whole number"
//   • sizeForNotional: target notional -> exchange-legal base quantity
//
// Raw market prices are floats and essentially never land exactly on an
// integer tick, so equality is widened to |price - round(price)| < eps.
// The epsilon is a config knob (LEVEL_EPSILON), not a hidden constant,
// because it directly sets trade trigger sensitivity.

package main

import "math"

// isIntegerLevel reports whether price sits within eps of its nearest integer.
func isIntegerLevel(price, eps float64) bool {
	return math.Abs(price-math.Round(price)) < eps
}

// levelOf returns the nearest integer price level.
func levelOf(price float64) int {
	return int(math.Round(price))
}

// snapToStep rounds qty DOWN to the nearest multiple of step. Rounding up
// could exceed the intended notional or get the order rejected, so never.
func snapToStep(qty, step float64) float64 {
	if qty <= 0 {
		return 0
	}
	if step <= 0 {
		return qty
	}
	steps := math.Floor(qty / step)
	return steps * step
}

// sizeForNotional converts a target quote value into a tradable base quantity.
// The venue minimum notional wins over the configured per-trade value; the raw
// quantity is snapped down onto the step grid. A zero result means "no trade
// this tick" (price too high for the target, or step too coarse) and is an
// expected outcome, not an error.
func sizeForNotional(price, notionalUSD float64, rules SymbolRules) float64 {
	if price <= 0 {
		return 0
	}
	target := notionalUSD
	if rules.MinNotional > target {
		target = rules.MinNotional
	}
	raw := target / price
	return snapToStep(raw, rules.StepSize)
}
