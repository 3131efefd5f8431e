// Package app contains the venue fee calculators and the registry that
// dispatches requests to them.
package app

import (
	"fmt"
	"time"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

// Calculator is the capability every venue variant implements. Calculators
// are pure: the same request against the same schedule yields the same
// breakdown.
type Calculator interface {
	Venue() domain.Venue
	Estimate(req domain.TradeRequest) *domain.FeeEstimate
	Schedule() domain.FeeSchedule
}

// Clock returns the current time.
type Clock func() time.Time

// NewCalculator builds the variant selected by the schedule's model tag.
func NewCalculator(schedule domain.FeeSchedule, clock Clock) (Calculator, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	base := baseCalculator{schedule: schedule.Clone(), now: clock}

	switch schedule.Model {
	case domain.ModelProbabilityScaled:
		return &ProbabilityCalculator{baseCalculator: base}, nil
	case domain.ModelFlat:
		return &FlatCalculator{baseCalculator: base}, nil
	case domain.ModelVolumeTiered:
		return &TieredCalculator{baseCalculator: base}, nil
	case domain.ModelPool:
		return &PoolCalculator{baseCalculator: base}, nil
	default:
		return nil, fmt.Errorf("unknown fee model %q", schedule.Model)
	}
}

type baseCalculator struct {
	schedule domain.FeeSchedule
	now      Clock
}

func (b *baseCalculator) Venue() domain.Venue {
	return b.schedule.Venue
}

// Schedule returns a copy; callers cannot mutate the calculator's schedule.
func (b *baseCalculator) Schedule() domain.FeeSchedule {
	return b.schedule.Clone()
}

// finish appends the mode disclaimer and derives totals.
func (b *baseCalculator) finish(
	req domain.TradeRequest,
	breakdown domain.FeeBreakdown,
	confidence domain.Confidence,
	assumptions []string,
) *domain.FeeEstimate {
	if _, ok := domain.ParseOrderType(string(req.OrderType)); !ok {
		assumptions = append(assumptions, fmt.Sprintf("Unrecognized order type %q; taker pricing assumed", req.OrderType))
	}
	assumptions = append(assumptions, b.schedule.ModeDisclaimer())
	return domain.NewFeeEstimate(&b.schedule, req.SizeUSD, breakdown, confidence, assumptions, b.now())
}

// degenerate returns a zero-valued, low-confidence estimate.
func (b *baseCalculator) degenerate(req domain.TradeRequest, reason string) *domain.FeeEstimate {
	return b.finish(req, zeroBreakdown(), domain.ConfidenceLow, []string{"Degenerate input: " + reason})
}

// checkInput reports why a request cannot be priced, or "" when it can.
func (b *baseCalculator) checkInput(req domain.TradeRequest) string {
	if !req.SizeUSD.IsPositive() {
		return fmt.Sprintf("trade size %s must be positive; fee set to zero", req.SizeUSD)
	}
	if b.schedule.Category.ProbabilityPriced() && req.Price.Valid && !domain.ValidProbability(req.Price.Decimal) {
		return fmt.Sprintf("contract price %s outside (0, 1); fee set to zero", req.Price.Decimal)
	}
	return ""
}

func zeroBreakdown() domain.FeeBreakdown {
	return domain.FeeBreakdown{
		ExchangeFee:      decimal.Zero,
		GasFee:           decimal.Zero,
		SettlementFee:    decimal.Zero,
		SlippageEstimate: decimal.Zero,
		Rebate:           decimal.Zero,
	}
}

func orderLabel(o domain.OrderType) string {
	if o.IsMaker() {
		return "maker"
	}
	return "taker"
}
