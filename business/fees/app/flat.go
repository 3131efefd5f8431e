package app

import (
	"fmt"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
)

// FlatCalculator prices CLOB venues with fee = max(size * bps / 10000, min) + gas.
type FlatCalculator struct {
	baseCalculator
}

func (c *FlatCalculator) Estimate(req domain.TradeRequest) *domain.FeeEstimate {
	if reason := c.checkInput(req); reason != "" {
		return c.degenerate(req, reason)
	}

	sched := c.schedule.Flat
	orderType := req.EffectiveOrderType()
	confidence := domain.ConfidenceHigh
	var assumptions []string

	rate, short := sched.RateBps(orderType, req.MarketID)
	switch {
	case short:
		assumptions = append(assumptions, fmt.Sprintf("Short-duration market %s: %s rate %s bps", req.MarketID, orderLabel(orderType), rate))
	case req.MarketID == "":
		confidence = domain.ConfidenceMedium
		assumptions = append(assumptions, fmt.Sprintf("No market id supplied; standard %s rate %s bps assumed", orderLabel(orderType), rate))
	default:
		assumptions = append(assumptions, fmt.Sprintf("Standard %s rate %s bps", orderLabel(orderType), rate))
	}

	fee, floored := domain.FlatFee(req.SizeUSD, rate, sched.MinFeeUSD)
	if floored && sched.MinFeeUSD.IsPositive() {
		assumptions = append(assumptions, fmt.Sprintf("Minimum fee $%s applied", sched.MinFeeUSD))
	}
	if sched.GasUSD.IsPositive() {
		assumptions = append(assumptions, fmt.Sprintf("Fixed gas estimate $%s", sched.GasUSD))
	}

	breakdown := zeroBreakdown()
	breakdown.ExchangeFee = fee
	breakdown.GasFee = sched.GasUSD
	return c.finish(req, breakdown, confidence, assumptions)
}
