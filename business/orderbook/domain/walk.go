package domain

import (
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

// Fill is the result of walking one side of the book for a notional.
type Fill struct {
	Side           feesDomain.Side `json:"side"`
	NotionalUSD    decimal.Decimal `json:"notional_usd"`
	BestPrice      decimal.Decimal `json:"best_price"`
	AvgPrice       decimal.Decimal `json:"avg_price"`
	WorstPrice     decimal.Decimal `json:"worst_price"`
	Contracts      decimal.Decimal `json:"contracts"`
	Slippage       decimal.Decimal `json:"slippage_usd"`
	PriceImpactPct decimal.Decimal `json:"price_impact_pct"`
	LevelsConsumed int             `json:"levels_consumed"`
	// UnfilledUSD is the notional the book could not absorb; it is priced
	// at the worst visible level.
	UnfilledUSD decimal.Decimal `json:"unfilled_usd"`
}

// Exhausted reports whether the book ran out before the notional was filled.
func (f Fill) Exhausted() bool {
	return f.UnfilledUSD.IsPositive()
}

// Walk consumes levels on the taker side for notionalUSD, accumulating a
// size-weighted average price. It returns false when the side is empty or
// notional is not positive. Walk has no side effects on the snapshot.
func (s *Snapshot) Walk(side feesDomain.Side, notionalUSD decimal.Decimal) (Fill, bool) {
	levels := s.SideFor(side)
	if len(levels) == 0 || !notionalUSD.IsPositive() {
		return Fill{}, false
	}

	fill := Fill{
		Side:        side,
		NotionalUSD: notionalUSD,
		BestPrice:   levels[0].Price,
		UnfilledUSD: decimal.Zero,
	}

	remaining := notionalUSD
	contracts := decimal.Zero
	for _, level := range levels {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, level.Notional())
		contracts = contracts.Add(take.Div(level.Price))
		remaining = remaining.Sub(take)
		fill.WorstPrice = level.Price
		fill.LevelsConsumed++
	}

	if remaining.IsPositive() {
		worst := levels[len(levels)-1].Price
		contracts = contracts.Add(remaining.Div(worst))
		fill.WorstPrice = worst
		fill.UnfilledUSD = remaining
	}

	fill.Contracts = contracts
	fill.AvgPrice = notionalUSD.Div(contracts)

	perContract := fill.AvgPrice.Sub(fill.BestPrice).Abs()
	fill.Slippage = perContract.Mul(contracts)
	fill.PriceImpactPct = perContract.Div(fill.BestPrice).Mul(hundred)

	return fill, true
}

// SpreadCost is the half-spread paid crossing from mid: BUY pays ask - mid,
// SELL gives up mid - bid, per contract, floored at zero.
func (s *Snapshot) SpreadCost(side feesDomain.Side, contracts decimal.Decimal) decimal.Decimal {
	var half decimal.Decimal
	if side == feesDomain.SideSell {
		half = s.MidPrice.Sub(s.BestBid)
	} else {
		half = s.BestAsk.Sub(s.MidPrice)
	}
	if half.IsNegative() {
		return decimal.Zero
	}
	return half.Mul(contracts)
}
