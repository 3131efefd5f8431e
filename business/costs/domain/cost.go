// Package domain contains the total trading cost model.
package domain

import (
	"math"
	"time"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	orderbookDomain "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/domain"
	"github.com/shopspring/decimal"
)

// Mode records what an estimate was based on. It is informative: a live
// estimate can still carry low confidence.
type Mode string

const (
	ModePublicSchedule  Mode = "PUBLIC_SCHEDULE"
	ModeLiveOrderbook   Mode = "LIVE_ORDERBOOK"
	ModeAccountSpecific Mode = "ACCOUNT_SPECIFIC"
)

// FallbackReason explains why heuristics replaced a live book.
type FallbackReason string

const (
	FallbackLiveDisabled FallbackReason = "live_disabled"
	FallbackNoMarketID   FallbackReason = "no_market_id"
	FallbackNoOrderbook  FallbackReason = "venue_has_no_orderbook"
	FallbackFetchFailed  FallbackReason = "fetch_failed"
	FallbackEmptyBook    FallbackReason = "empty_book"
)

// ReferenceSizeUSD anchors the square-root slippage model.
var ReferenceSizeUSD = decimal.NewFromInt(1000)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// TradingCost is a fee estimate plus implicit costs.
type TradingCost struct {
	Venue           feesDomain.Venue          `json:"venue"`
	SizeUSD         decimal.Decimal           `json:"size_usd"`
	Side            feesDomain.Side           `json:"side"`
	ExplicitCostUSD decimal.Decimal           `json:"explicit_cost_usd"`
	SpreadCostUSD   decimal.Decimal           `json:"spread_cost_usd"`
	SlippageUSD     decimal.Decimal           `json:"slippage_usd"`
	ImplicitCostUSD decimal.Decimal           `json:"implicit_cost_usd"`
	TotalCostUSD    decimal.Decimal           `json:"total_cost_usd"`
	TotalCostPct    decimal.Decimal           `json:"total_cost_pct"`
	Mode            Mode                      `json:"mode"`
	Confidence      feesDomain.Confidence     `json:"confidence"`
	Assumptions     []string                  `json:"assumptions"`
	Fallback        FallbackReason            `json:"fallback,omitempty"`
	Fee             *feesDomain.FeeEstimate   `json:"fee_estimate"`
	Orderbook       *orderbookDomain.Snapshot `json:"orderbook,omitempty"`
	Fill            *orderbookDomain.Fill     `json:"fill,omitempty"`
	Timestamp       time.Time                 `json:"timestamp"`
}

// Implicit holds the spread and slippage components.
type Implicit struct {
	Spread   decimal.Decimal
	Slippage decimal.Decimal
}

// Total returns spread + slippage.
func (i Implicit) Total() decimal.Decimal {
	return i.Spread.Add(i.Slippage)
}

// HeuristicSpread is half the venue's typical spread applied to size.
func HeuristicSpread(size, typicalSpreadPct decimal.Decimal) decimal.Decimal {
	return size.Mul(typicalSpreadPct).Div(hundred).Div(two)
}

// HeuristicSlippage is baseSlippagePct/100 * size * sqrt(size/ReferenceSizeUSD).
func HeuristicSlippage(size, baseSlippagePct decimal.Decimal) decimal.Decimal {
	if !size.IsPositive() {
		return decimal.Zero
	}
	ratio := size.Div(ReferenceSizeUSD).InexactFloat64()
	scale := decimal.NewFromFloat(math.Sqrt(ratio))
	return baseSlippagePct.Div(hundred).Mul(size).Mul(scale)
}

// NewTradingCost sums explicit and implicit costs.
func NewTradingCost(
	fee *feesDomain.FeeEstimate,
	side feesDomain.Side,
	explicit decimal.Decimal,
	implicit Implicit,
	mode Mode,
	confidence feesDomain.Confidence,
	assumptions []string,
	now time.Time,
) *TradingCost {
	total := explicit.Add(implicit.Total())
	return &TradingCost{
		Venue:           fee.Venue,
		SizeUSD:         fee.SizeUSD,
		Side:            side,
		ExplicitCostUSD: explicit,
		SpreadCostUSD:   implicit.Spread,
		SlippageUSD:     implicit.Slippage,
		ImplicitCostUSD: implicit.Total(),
		TotalCostUSD:    total,
		TotalCostPct:    feesDomain.Percent(total, fee.SizeUSD),
		Mode:            mode,
		Confidence:      confidence,
		Assumptions:     assumptions,
		Fee:             fee,
		Timestamp:       now,
	}
}
