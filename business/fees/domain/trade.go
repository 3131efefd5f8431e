package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderType is the order aggressiveness.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET" // taker
	OrderTypeLimit  OrderType = "LIMIT"  // maker
)

// ParseOrderType normalizes s. Empty input is accepted and left empty.
func ParseOrderType(s string) (OrderType, bool) {
	switch o := OrderType(strings.ToUpper(strings.TrimSpace(s))); o {
	case "", OrderTypeMarket, OrderTypeLimit:
		return o, true
	default:
		return o, false
	}
}

// IsMaker reports whether the order rests on the book.
func (o OrderType) IsMaker() bool {
	return o == OrderTypeLimit
}

// Side is the trade direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes s. Empty input is accepted and left empty.
func ParseSide(s string) (Side, bool) {
	switch side := Side(strings.ToUpper(strings.TrimSpace(s))); side {
	case "", SideBuy, SideSell:
		return side, true
	default:
		return side, false
	}
}

// PoolType is a DEX pool category.
type PoolType string

const (
	PoolConcentrated PoolType = "concentrated"
	PoolStable       PoolType = "stable"
	PoolVolatile     PoolType = "volatile"
)

// UserContext is caller-supplied account data.
type UserContext struct {
	TrailingVolumeUSD decimal.Decimal `json:"trailing_volume_usd"`
	StakedBalance     decimal.Decimal `json:"staked_balance"`
}

// PoolContext describes the DEX pool a trade routes through.
type PoolContext struct {
	Type           PoolType            `json:"type"`
	TickSpacing    int                 `json:"tick_spacing,omitempty"`
	PriceImpactPct decimal.NullDecimal `json:"price_impact_pct"`
}

// TradeRequest is the immutable input to every estimate.
type TradeRequest struct {
	Venue     Venue               `json:"venue"`
	SizeUSD   decimal.Decimal     `json:"size_usd"`
	OrderType OrderType           `json:"order_type"`
	Price     decimal.NullDecimal `json:"price"`
	MarketID  string              `json:"market_id,omitempty"`
	Side      Side                `json:"side,omitempty"`
	User      *UserContext        `json:"user,omitempty"`
	Pool      *PoolContext        `json:"pool,omitempty"`
}

// WithPool returns a copy of r routed through pool.
func (r TradeRequest) WithPool(pool PoolContext) TradeRequest {
	r.Pool = &pool
	return r
}

// EffectiveOrderType normalizes the order type and defaults an empty or
// unrecognized one to MARKET.
func (r TradeRequest) EffectiveOrderType() OrderType {
	o, ok := ParseOrderType(string(r.OrderType))
	if !ok || o == "" {
		return OrderTypeMarket
	}
	return o
}
