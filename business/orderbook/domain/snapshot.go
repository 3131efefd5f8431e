// Package domain contains the canonical orderbook snapshot and the book walk.
package domain

import (
	"slices"
	"time"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

var (
	two         = decimal.NewFromInt(2)
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// LevelSide tags a price level.
type LevelSide string

const (
	LevelBid LevelSide = "BID"
	LevelAsk LevelSide = "ASK"
)

// Level is a single resting price level; Size is in contracts (or base units).
type Level struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
	Side  LevelSide       `json:"side"`
}

// Notional returns Price * Size.
func (l Level) Notional() decimal.Decimal {
	return l.Price.Mul(l.Size)
}

// Snapshot is the canonical orderbook. Bids are sorted descending, asks
// ascending, and BestBid <= MidPrice <= BestAsk whenever both sides exist.
type Snapshot struct {
	Venue       feesDomain.Venue `json:"venue"`
	MarketID    string           `json:"market_id"`
	Timestamp   time.Time        `json:"timestamp"`
	BestBid     decimal.Decimal  `json:"best_bid"`
	BestAsk     decimal.Decimal  `json:"best_ask"`
	MidPrice    decimal.Decimal  `json:"mid_price"`
	Spread      decimal.Decimal  `json:"spread"`
	SpreadBps   decimal.Decimal  `json:"spread_bps"`
	BidDepthUSD decimal.Decimal  `json:"bid_depth_usd"`
	AskDepthUSD decimal.Decimal  `json:"ask_depth_usd"`
	Bids        []Level          `json:"bids"`
	Asks        []Level          `json:"asks"`
}

// NewSnapshot sorts the levels, drops non-positive ones and derives the top
// of book. Bounded books (contracts priced in [0, 1]) default an empty bid
// side to 0 and an empty ask side to 1; unbounded books mirror the present
// side.
func NewSnapshot(venue feesDomain.Venue, marketID string, ts time.Time, bids, asks []Level, bounded bool) *Snapshot {
	s := &Snapshot{
		Venue:     venue,
		MarketID:  marketID,
		Timestamp: ts,
		Bids:      clean(bids, LevelBid),
		Asks:      clean(asks, LevelAsk),
	}

	slices.SortStableFunc(s.Bids, func(a, b Level) int { return b.Price.Cmp(a.Price) })
	slices.SortStableFunc(s.Asks, func(a, b Level) int { return a.Price.Cmp(b.Price) })

	hasBid, hasAsk := len(s.Bids) > 0, len(s.Asks) > 0
	if hasBid {
		s.BestBid = s.Bids[0].Price
	}
	if hasAsk {
		s.BestAsk = s.Asks[0].Price
	}

	switch {
	case hasBid && hasAsk:
	case bounded:
		if !hasBid {
			s.BestBid = decimal.Zero
		}
		if !hasAsk {
			s.BestAsk = decimal.NewFromInt(1)
		}
	case hasBid:
		s.BestAsk = s.BestBid
	case hasAsk:
		s.BestBid = s.BestAsk
	}

	s.MidPrice = s.BestBid.Add(s.BestAsk).Div(two)
	s.Spread = s.BestAsk.Sub(s.BestBid)
	if s.MidPrice.IsPositive() {
		s.SpreadBps = s.Spread.Div(s.MidPrice).Mul(tenThousand)
	}
	s.BidDepthUSD = depth(s.Bids)
	s.AskDepthUSD = depth(s.Asks)

	return s
}

func clean(levels []Level, side LevelSide) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		if !l.Price.IsPositive() || !l.Size.IsPositive() {
			continue
		}
		l.Side = side
		out = append(out, l)
	}
	return out
}

func depth(levels []Level) decimal.Decimal {
	total := decimal.Zero
	for _, l := range levels {
		total = total.Add(l.Notional())
	}
	return total
}

// Levels returns bids then asks, each in book order.
func (s *Snapshot) Levels() []Level {
	out := make([]Level, 0, len(s.Bids)+len(s.Asks))
	out = append(out, s.Bids...)
	return append(out, s.Asks...)
}

// Crossed reports a best bid above the best ask.
func (s *Snapshot) Crossed() bool {
	return len(s.Bids) > 0 && len(s.Asks) > 0 && s.BestBid.GreaterThan(s.BestAsk)
}

// SideFor returns the levels a taker on side consumes: asks for BUY, bids
// for SELL.
func (s *Snapshot) SideFor(side feesDomain.Side) []Level {
	if side == feesDomain.SideSell {
		return s.Bids
	}
	return s.Asks
}
