// Package app contains the cost estimator.
package app

import (
	"context"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	orderbookDomain "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/domain"
)

// FeeEstimator produces explicit costs; the fees registry satisfies it.
type FeeEstimator interface {
	Estimate(req feesDomain.TradeRequest) (*feesDomain.FeeEstimate, error)
	Schedule(venue feesDomain.Venue) (feesDomain.FeeSchedule, error)
}

// SnapshotProvider returns normalized live books.
type SnapshotProvider interface {
	Supports(venue feesDomain.Venue) bool
	Snapshot(ctx context.Context, venue feesDomain.Venue, marketID string) (*orderbookDomain.Snapshot, error)
}
