package domain

import (
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

// TradeLeg is one side of a multi-venue trade.
type TradeLeg struct {
	Venue     feesDomain.Venue     `json:"venue"`
	Side      feesDomain.Side      `json:"side"`
	SizeUSD   decimal.Decimal      `json:"size_usd"`
	Price     decimal.NullDecimal  `json:"price"`
	MarketID  string               `json:"market_id,omitempty"`
	OrderType feesDomain.OrderType `json:"order_type,omitempty"`
}

// Request converts the leg into a fee/cost request.
func (l TradeLeg) Request() feesDomain.TradeRequest {
	return feesDomain.TradeRequest{
		Venue:     l.Venue,
		SizeUSD:   l.SizeUSD,
		OrderType: l.OrderType,
		Price:     l.Price,
		MarketID:  l.MarketID,
		Side:      l.Side,
	}
}

// TotalNotional sums leg sizes.
func TotalNotional(legs []TradeLeg) decimal.Decimal {
	total := decimal.Zero
	for _, l := range legs {
		total = total.Add(l.SizeUSD)
	}
	return total
}

// DistinctVenues returns the venues in order of first appearance.
func DistinctVenues(legs []TradeLeg) []feesDomain.Venue {
	seen := make(map[feesDomain.Venue]struct{}, len(legs))
	out := make([]feesDomain.Venue, 0, len(legs))
	for _, l := range legs {
		if _, ok := seen[l.Venue]; ok {
			continue
		}
		seen[l.Venue] = struct{}{}
		out = append(out, l.Venue)
	}
	return out
}
