// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	costsDomain "github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

// EstimateKind tags which estimate a leg carries.
type EstimateKind string

const (
	KindFeeOnly  EstimateKind = "FEE_ONLY"
	KindFullCost EstimateKind = "FULL_COST"
)

// LegEstimate is the per-leg result: exactly one of Fee or Cost is set,
// as named by Kind.
type LegEstimate struct {
	Kind EstimateKind             `json:"kind"`
	Leg  TradeLeg                 `json:"leg"`
	Fee  *feesDomain.FeeEstimate  `json:"fee_estimate,omitempty"`
	Cost *costsDomain.TradingCost `json:"trading_cost,omitempty"`
}

// FeeOnly wraps a fee estimate.
func FeeOnly(leg TradeLeg, fee *feesDomain.FeeEstimate) LegEstimate {
	return LegEstimate{Kind: KindFeeOnly, Leg: leg, Fee: fee}
}

// FullCost wraps a total-cost estimate.
func FullCost(leg TradeLeg, cost *costsDomain.TradingCost) LegEstimate {
	return LegEstimate{Kind: KindFullCost, Leg: leg, Cost: cost}
}

// TotalUSD is the cost this leg contributes.
func (e LegEstimate) TotalUSD() decimal.Decimal {
	switch e.Kind {
	case KindFullCost:
		return e.Cost.TotalCostUSD
	case KindFeeOnly:
		return e.Fee.TotalFeeUSD
	}
	return decimal.Zero
}

// Confidence is the confidence of the carried estimate.
func (e LegEstimate) Confidence() feesDomain.Confidence {
	switch e.Kind {
	case KindFullCost:
		return e.Cost.Confidence
	case KindFeeOnly:
		return e.Fee.Confidence
	}
	return feesDomain.ConfidenceLow
}

// SumCosts reduces leg estimates to their total cost.
func SumCosts(estimates []LegEstimate) decimal.Decimal {
	total := decimal.Zero
	for _, e := range estimates {
		total = total.Add(e.TotalUSD())
	}
	return total
}

// ProfitResult contains the calculated profit for an analysis.
type ProfitResult struct {
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	TotalCosts    decimal.Decimal `json:"total_costs"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	TotalNotional decimal.Decimal `json:"total_notional"`
	NetProfitPct  decimal.Decimal `json:"net_profit_pct"` // as percentage (e.g., 0.86 for 0.86%)
	MinProfitPct  decimal.Decimal `json:"min_profit_pct"`
	IsProfitable  bool            `json:"is_profitable"`
}
