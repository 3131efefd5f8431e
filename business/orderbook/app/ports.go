// Package app contains the orderbook normalizer, the snapshot service and
// the port to the remote orderbook source.
package app

import (
	"context"
	"encoding/json"
	"time"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
)

// RawOrderbook is the venue-specific payload returned by the orderbook
// source. Data is left undecoded; only the Normalizer understands it.
type RawOrderbook struct {
	Venue     feesDomain.Venue `json:"venue"`
	MarketID  string           `json:"market_id"`
	Timestamp time.Time        `json:"timestamp"`
	Data      json.RawMessage  `json:"data"`
}

// Fetcher retrieves raw orderbook payloads for a venue and market.
type Fetcher interface {
	FetchOrderbook(ctx context.Context, venue feesDomain.Venue, marketID string) (*RawOrderbook, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, venue feesDomain.Venue, marketID string) (*RawOrderbook, error)

// FetchOrderbook calls f.
func (f FetcherFunc) FetchOrderbook(ctx context.Context, venue feesDomain.Venue, marketID string) (*RawOrderbook, error) {
	return f(ctx, venue, marketID)
}
