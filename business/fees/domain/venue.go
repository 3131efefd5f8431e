// Package domain contains the core domain types for the fees context.
package domain

import "strings"

// Venue identifies a trading venue.
type Venue string

const (
	VenueKalshi      Venue = "kalshi"
	VenuePolymarket  Venue = "polymarket"
	VenueHyperliquid Venue = "hyperliquid"
	VenueAerodrome   Venue = "aerodrome"
)

// ParseVenue normalizes user input into a Venue.
func ParseVenue(s string) Venue {
	return Venue(strings.ToLower(strings.TrimSpace(s)))
}

func (v Venue) String() string {
	return string(v)
}

// Category is the tradable-asset class a venue lists.
type Category string

const (
	CategoryPredictionMarket Category = "prediction_market"
	CategoryPerpetual        Category = "perpetual"
	CategorySpotDEX          Category = "spot_dex"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPredictionMarket, CategoryPerpetual, CategorySpotDEX:
		return true
	}
	return false
}

// ProbabilityPriced reports whether contracts in this category trade in [0, 1].
func (c Category) ProbabilityPriced() bool {
	return c == CategoryPredictionMarket
}

// VenueCategories is the venue compatibility relation: two venues are
// arbitrage-compatible iff they are distinct and share a category.
type VenueCategories map[Venue]Category

// Category returns the category of v.
func (vc VenueCategories) Category(v Venue) (Category, bool) {
	c, ok := vc[v]
	return c, ok
}

// Compatible is symmetric and false for a venue paired with itself.
func (vc VenueCategories) Compatible(a, b Venue) bool {
	if a == b {
		return false
	}
	ca, okA := vc[a]
	cb, okB := vc[b]
	return okA && okB && ca == cb
}
