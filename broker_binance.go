// FILE: broker_binance.go
// Package main — Binance Spot broker (direct REST/HMAC).
//
// Implementation of the Broker interface against api.binance.com:
// - Maps PRODUCT_ID like "AVAX-USD" -> Binance symbol "AVAXUSDT" (USD≈USDT).
// - Trading rules (LOT_SIZE step, MIN_NOTIONAL/NOTIONAL floor) come from
//   /api/v3/exchangeInfo and are fetched once by the caller at startup.
// - Market orders are placed by BASE quantity with newOrderRespType=FULL so
//   the response carries the individual fills for VWAP accounting.
//
// Required env:
//   BINANCE_API_KEY=<key>
//   BINANCE_API_SECRET=<secret>
// Optional:
//   BINANCE_API_BASE=https://api.binance.com
//   BINANCE_RECV_WINDOW_MS=5000

package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BinanceBroker struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	recvWindow int64
	hc         *http.Client

	// step size of the traded symbol; set by GetSymbolRules, used to format
	// order quantities without float dust
	stepSize float64
}

// NewBinanceBrokerFromEnv builds a live broker or errors out when either
// credential is absent. Live mode must not start without keys.
func NewBinanceBrokerFromEnv() (*BinanceBroker, error) {
	key := getEnv("BINANCE_API_KEY", "")
	secret := getEnv("BINANCE_API_SECRET", "")
	if key == "" || secret == "" {
		return nil, errors.New("BINANCE_API_KEY and BINANCE_API_SECRET must be set")
	}
	base := getEnv("BINANCE_API_BASE", "https://api.binance.com")
	rw := getEnvInt("BINANCE_RECV_WINDOW_MS", 5000)
	return &BinanceBroker{
		apiKey:     key,
		apiSecret:  secret,
		baseURL:    strings.TrimRight(base, "/"),
		recvWindow: int64(rw),
		hc:         &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (bb *BinanceBroker) Name() string { return "binance" }

// ----- Helpers -----

// mapProductToSymbol turns "AVAX-USD" into "AVAXUSDT" (USD≈USDT) and
// "AVAX-USDT" into "AVAXUSDT".
func mapProductToSymbol(product string) string {
	p := strings.ToUpper(strings.TrimSpace(product))
	if strings.HasSuffix(p, "-USD") {
		return strings.ReplaceAll(p[:len(p)-4], "-", "") + "USDT"
	}
	return strings.ReplaceAll(p, "-", "")
}

func (bb *BinanceBroker) sign(q url.Values) string {
	mac := hmac.New(sha256.New, []byte(bb.apiSecret))
	_, _ = io.WriteString(mac, q.Encode())
	return hex.EncodeToString(mac.Sum(nil))
}

func (bb *BinanceBroker) get(ctx context.Context, path string, q url.Values, signed bool) ([]byte, error) {
	if q == nil {
		q = url.Values{}
	}
	if signed {
		q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		if bb.recvWindow > 0 {
			q.Set("recvWindow", strconv.FormatInt(bb.recvWindow, 10))
		}
		q.Set("signature", bb.sign(q))
	}
	u := bb.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if bb.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", bb.apiKey)
	}
	res, err := bb.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	bs, _ := io.ReadAll(res.Body)
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("binance GET %s: %s", path, string(bs))
	}
	return bs, nil
}

func (bb *BinanceBroker) post(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	if bb.recvWindow > 0 {
		q.Set("recvWindow", strconv.FormatInt(bb.recvWindow, 10))
	}
	q.Set("signature", bb.sign(q))
	u := bb.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(q.Encode()))
	if err != nil {
		return nil, err
	}
	if bb.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", bb.apiKey)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := bb.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	bs, _ := io.ReadAll(res.Body)
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("binance POST %s: %s", path, string(bs))
	}
	return bs, nil
}

// formatQuantity renders a base quantity snapped onto the step grid without
// float dust ("0.25", never "0.25000000000000003"). Binance rejects
// quantities that don't sit exactly on LOT_SIZE.
func formatQuantity(qty, step float64) string {
	d := decimal.NewFromFloat(qty)
	if step > 0 {
		s := decimal.NewFromFloat(step)
		d = d.Div(s).Floor().Mul(s)
	}
	return d.String()
}

// ----- Broker methods -----

// GetSymbolRules fetches LOT_SIZE step and the minimum notional for the pair.
// Binance has renamed the notional filter over time (MIN_NOTIONAL vs
// NOTIONAL); either is accepted, absent means 0. A missing LOT_SIZE filter
// falls back to a conservative 0.001 step.
func (bb *BinanceBroker) GetSymbolRules(ctx context.Context, product string) (SymbolRules, error) {
	symbol := mapProductToSymbol(product)
	q := url.Values{}
	q.Set("symbol", symbol)
	bs, err := bb.get(ctx, "/api/v3/exchangeInfo", q, false)
	if err != nil {
		return SymbolRules{}, err
	}
	var ex struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Filters []struct {
				FilterType  string `json:"filterType"`
				StepSize    string `json:"stepSize"`
				MinNotional string `json:"minNotional"`
				Notional    string `json:"notional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(bs, &ex); err != nil {
		return SymbolRules{}, err
	}
	if len(ex.Symbols) == 0 {
		return SymbolRules{}, fmt.Errorf("exchangeInfo: symbol %s not found", symbol)
	}
	rules := SymbolRules{StepSize: 0.001, MinNotional: 0}
	for _, f := range ex.Symbols[0].Filters {
		switch f.FilterType {
		case "LOT_SIZE":
			if v, err := strconv.ParseFloat(f.StepSize, 64); err == nil && v > 0 {
				rules.StepSize = v
			}
		case "MIN_NOTIONAL", "NOTIONAL":
			n := f.MinNotional
			if n == "" {
				n = f.Notional
			}
			if v, err := strconv.ParseFloat(n, 64); err == nil && v > 0 {
				rules.MinNotional = v
			}
		}
	}
	bb.stepSize = rules.StepSize
	return rules, nil
}

func (bb *BinanceBroker) GetNowPrice(ctx context.Context, product string) (float64, error) {
	symbol := mapProductToSymbol(product)
	q := url.Values{}
	q.Set("symbol", symbol)
	bs, err := bb.get(ctx, "/api/v3/ticker/price", q, false)
	if err != nil {
		return 0, err
	}
	var p struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(bs, &p); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(p.Price, 64)
}

// PlaceMarketBase submits a market order for baseQty and normalizes the FULL
// response (executedQty + fills). A non-2xx or transport error returns
// (nil, err); the caller treats that as "nothing happened".
func (bb *BinanceBroker) PlaceMarketBase(ctx context.Context, product string, side OrderSide, baseQty float64) (*PlacedOrder, error) {
	if baseQty <= 0 {
		return nil, fmt.Errorf("baseQty must be > 0, got %v", baseQty)
	}
	symbol := mapProductToSymbol(product)

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("side", strings.ToUpper(string(side)))
	q.Set("type", "MARKET")
	q.Set("quantity", formatQuantity(baseQty, bb.stepSize))
	q.Set("newOrderRespType", "FULL")
	q.Set("newClientOrderId", "lvl-"+uuid.New().String()[:18])

	bs, err := bb.post(ctx, "/api/v3/order", q)
	if err != nil {
		return nil, err
	}

	var ord struct {
		OrderID      int64  `json:"orderId"`
		TransactTime int64  `json:"transactTime"`
		Price        string `json:"price"`
		ExecutedQty  string `json:"executedQty"`
		Fills        []struct {
			Price string `json:"price"`
			Qty   string `json:"qty"`
		} `json:"fills"`
	}
	if err := json.Unmarshal(bs, &ord); err != nil {
		return nil, err
	}

	po := &PlacedOrder{
		ID:        strconv.FormatInt(ord.OrderID, 10),
		ProductID: product,
		Side:      side,
	}
	if ord.TransactTime > 0 {
		po.CreateTime = time.UnixMilli(ord.TransactTime).UTC()
	} else {
		po.CreateTime = time.Now().UTC()
	}
	po.Price, _ = strconv.ParseFloat(ord.Price, 64) // "0.00000000" on market orders
	po.ExecutedQty, _ = strconv.ParseFloat(ord.ExecutedQty, 64)
	for _, f := range ord.Fills {
		p, _ := strconv.ParseFloat(f.Price, 64)
		fq, _ := strconv.ParseFloat(f.Qty, 64)
		po.Fills = append(po.Fills, Fill{Price: p, Qty: fq})
	}
	return po, nil
}
