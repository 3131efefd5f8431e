package app

import (
	"fmt"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
)

// PoolCalculator prices DEX swaps by pool category and tick spacing.
type PoolCalculator struct {
	baseCalculator
}

// Estimate resolves pool context from the request, then from a known pool
// address in MarketID, and otherwise assumes a volatile pool.
func (c *PoolCalculator) Estimate(req domain.TradeRequest) *domain.FeeEstimate {
	if reason := c.checkInput(req); reason != "" {
		return c.degenerate(req, reason)
	}

	sched := c.schedule.Pool
	var (
		pool        domain.PoolContext
		confidence  domain.Confidence
		assumptions []string
	)

	switch known, ok := sched.FindPool(req.MarketID); {
	case req.Pool != nil:
		pool = *req.Pool
		confidence = domain.ConfidenceMedium
		assumptions = append(assumptions, fmt.Sprintf("Pool context supplied: %s", describePool(pool)))
	case ok:
		pool = domain.PoolContext{Type: known.Type, TickSpacing: known.TickSpacing}
		confidence = domain.ConfidenceHigh
		assumptions = append(assumptions, fmt.Sprintf("Known pool %s (%s): %s", known.Name, known.Address.Hex(), describePool(pool)))
	default:
		pool = domain.PoolContext{Type: domain.PoolVolatile}
		confidence = domain.ConfidenceMedium
		assumptions = append(assumptions, "No pool context supplied; volatile pool rate assumed")
	}

	rate, exact := sched.RateBps(pool.Type, pool.TickSpacing)
	if !exact {
		confidence = domain.LowerConfidence(confidence, domain.ConfidenceMedium)
		assumptions = append(assumptions, fmt.Sprintf("No published rate for %s; volatile rate %s bps substituted", describePool(pool), rate))
	} else {
		assumptions = append(assumptions, fmt.Sprintf("Pool fee %s bps", rate))
	}

	breakdown := zeroBreakdown()
	breakdown.ExchangeFee = domain.Bps(req.SizeUSD, rate)
	breakdown.GasFee = sched.GasUSD
	if sched.GasUSD.IsPositive() {
		assumptions = append(assumptions, fmt.Sprintf("Fixed gas estimate $%s", sched.GasUSD))
	}

	if pool.PriceImpactPct.Valid {
		impact := pool.PriceImpactPct.Decimal.Abs()
		breakdown.SlippageEstimate = req.SizeUSD.Mul(impact).Div(hundred)
		if exact {
			confidence = domain.ConfidenceHigh
		}
		assumptions = append(assumptions, fmt.Sprintf("Quoted price impact %s%% folded in as slippage", impact))
	}

	return c.finish(req, breakdown, confidence, assumptions)
}

func describePool(p domain.PoolContext) string {
	if p.Type == domain.PoolConcentrated {
		return fmt.Sprintf("concentrated, tick spacing %d", p.TickSpacing)
	}
	if p.Type == "" {
		return "unspecified pool type"
	}
	return string(p.Type)
}
