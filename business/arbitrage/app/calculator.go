package app

import (
	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

// DefaultMinProfitPct is the profitability threshold when none is configured.
var DefaultMinProfitPct = decimal.RequireFromString("0.5")

// ProfitCalculator turns gross profit and costs into a verdict.
type ProfitCalculator struct {
	minProfitPct decimal.Decimal
}

// NewProfitCalculator creates a new ProfitCalculator with a net-percent threshold.
func NewProfitCalculator(minProfitPct decimal.Decimal) *ProfitCalculator {
	return &ProfitCalculator{minProfitPct: minProfitPct}
}

// Calculate computes the net result. The verdict is net_pct >= threshold,
// so a result exactly at the threshold is profitable.
func (c *ProfitCalculator) Calculate(grossProfit, totalCosts, totalNotional decimal.Decimal) domain.ProfitResult {
	netProfit := grossProfit.Sub(totalCosts)
	netProfitPct := feesDomain.Percent(netProfit, totalNotional)

	return domain.ProfitResult{
		GrossProfit:   grossProfit,
		TotalCosts:    totalCosts,
		NetProfit:     netProfit,
		TotalNotional: totalNotional,
		NetProfitPct:  netProfitPct,
		MinProfitPct:  c.minProfitPct,
		IsProfitable:  netProfitPct.GreaterThanOrEqual(c.minProfitPct),
	}
}
