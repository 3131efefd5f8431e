package app

import (
	"fmt"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
)

// ProbabilityCalculator prices binary-event contracts with
// fee = coefficient * contracts * P * (1-P).
type ProbabilityCalculator struct {
	baseCalculator
}

func (c *ProbabilityCalculator) Estimate(req domain.TradeRequest) *domain.FeeEstimate {
	if reason := c.checkInput(req); reason != "" {
		return c.degenerate(req, reason)
	}
	if !req.Price.Valid {
		return c.degenerate(req, "contract price is required for probability-scaled fees; fee set to zero")
	}

	p := req.Price.Decimal
	sched := c.schedule.Probability
	orderType := req.EffectiveOrderType()
	confidence := domain.ConfidenceHigh
	var assumptions []string

	coefficient := sched.TakerCoefficient
	if orderType.IsMaker() {
		var inSeries bool
		coefficient, inSeries = sched.MakerCoefficientFor(req.MarketID)
		switch {
		case req.MarketID == "":
			confidence = domain.ConfidenceMedium
			assumptions = append(assumptions, "No market id supplied; maker fee assumed zero (non-series market)")
		case !inSeries:
			assumptions = append(assumptions, fmt.Sprintf("Market %s is outside the maker-fee series; maker fee is zero", req.MarketID))
		default:
			assumptions = append(assumptions, fmt.Sprintf("Market %s is in a maker-fee series", req.MarketID))
		}
	}

	contracts, fee := domain.ProbabilityScaledFee(coefficient, req.SizeUSD, p)
	assumptions = append(assumptions,
		fmt.Sprintf("%s contracts at P=%s", contracts.StringFixed(2), p),
		fmt.Sprintf("%s coefficient %s applied to P*(1-P)=%s", orderLabel(orderType), coefficient, p.Mul(one.Sub(p))),
	)
	switch {
	case p.LessThan(tail):
		assumptions = append(assumptions, "Longshot price; fee per contract is small but the contract count is large, so fee per dollar is near its maximum")
	case p.GreaterThan(one.Sub(tail)):
		assumptions = append(assumptions, "Price near certainty; fee per contract and per dollar approach zero")
	}

	breakdown := zeroBreakdown()
	breakdown.ExchangeFee = fee
	return c.finish(req, breakdown, confidence, assumptions)
}
