// FILE: levels_test.go
package main

import (
	"math"
	"testing"
)

func TestIsIntegerLevel(t *testing.T) {
	const eps = 1e-6
	tests := []struct {
		name  string
		price float64
		want  bool
	}{
		{"ExactInteger", 25.0, true},
		{"JustBelowInteger", 25.0 - 1e-7, true},
		{"JustAboveInteger", 25.0 + 1e-7, true},
		{"AtEpsilonBoundaryAbove", 25.0 + eps, false},
		{"AtEpsilonBoundaryBelow", 25.0 - eps, false},
		{"HalfWay", 25.5, false},
		{"TypicalMarketPrice", 24.9371, false},
		{"LargeInteger", 148.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isIntegerLevel(tt.price, eps); got != tt.want {
				t.Errorf("isIntegerLevel(%v, %v) = %v, want %v", tt.price, eps, got, tt.want)
			}
		})
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		price float64
		want  int
	}{
		{25.0, 25},
		{24.9999999, 25},
		{25.0000001, 25},
		{10.0, 10},
		{9.49, 9},
	}
	for _, tt := range tests {
		if got := levelOf(tt.price); got != tt.want {
			t.Errorf("levelOf(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}
}

func TestSnapToStep(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		step float64
		want float64
	}{
		{"ExactMultiple", 0.25, 0.01, 0.25},
		{"RoundsDown", 0.2599, 0.01, 0.25},
		{"NeverUp", 0.2999999, 0.01, 0.29},
		{"BelowOneStep", 0.0049, 0.01, 0.0},
		{"ZeroQty", 0, 0.01, 0},
		{"NegativeQty", -1, 0.01, 0},
		{"ZeroStepPassthrough", 0.1234, 0, 0.1234},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snapToStep(tt.qty, tt.step)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("snapToStep(%v, %v) = %v, want %v", tt.qty, tt.step, got, tt.want)
			}
		})
	}
}

func TestSizeForNotional(t *testing.T) {
	rules := SymbolRules{StepSize: 0.01, MinNotional: 5}

	// MinNotional dominates a 1 USDT target: 5/20 = 0.25, already on the grid.
	got := sizeForNotional(20, 1, rules)
	if math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("sizeForNotional(20, 1) = %v, want 0.25", got)
	}

	// Configured notional dominates when it exceeds the venue minimum.
	got = sizeForNotional(20, 10, rules)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("sizeForNotional(20, 10) = %v, want 0.5", got)
	}

	// Price too high for the step grid: quantity collapses to zero, not an error.
	got = sizeForNotional(1e9, 1, rules)
	if got != 0 {
		t.Fatalf("sizeForNotional at extreme price = %v, want 0", got)
	}

	// Non-positive price sizes to zero.
	if got := sizeForNotional(0, 1, rules); got != 0 {
		t.Fatalf("sizeForNotional(0, 1) = %v, want 0", got)
	}
}

// The sizer must only ever produce non-negative multiples of the step.
func TestSizeForNotional_StepMultipleProperty(t *testing.T) {
	rules := SymbolRules{StepSize: 0.001, MinNotional: 5}
	prices := []float64{0.37, 1, 9.99, 10, 23.456, 100, 148, 5000}
	notionals := []float64{0.5, 1, 5, 12.34, 250}

	for _, p := range prices {
		for _, n := range notionals {
			qty := sizeForNotional(p, n, rules)
			if qty < 0 {
				t.Fatalf("negative quantity %v for price=%v notional=%v", qty, p, n)
			}
			steps := qty / rules.StepSize
			if math.Abs(steps-math.Round(steps)) > 1e-6 {
				t.Fatalf("quantity %v not a step multiple for price=%v notional=%v", qty, p, n)
			}
		}
	}
}

func TestAvgFillPrice(t *testing.T) {
	tests := []struct {
		name  string
		order *PlacedOrder
		want  float64
	}{
		{
			"SingleFill",
			&PlacedOrder{Fills: []Fill{{Price: 50.02, Qty: 0.5}}},
			50.02,
		},
		{
			"WeightedAcrossFills",
			&PlacedOrder{Fills: []Fill{{Price: 50, Qty: 0.75}, {Price: 51, Qty: 0.25}}},
			50.25,
		},
		{
			"NoFillsFallsBackToQuotedPrice",
			&PlacedOrder{Price: 49.5},
			49.5,
		},
		{
			"NothingReported",
			&PlacedOrder{},
			0,
		},
		{
			"NilOrder",
			nil,
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := avgFillPrice(tt.order)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("avgFillPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}
