// Package app contains the arbitrage analyzer and its ports.
package app

import (
	"context"
	"io"

	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	costsDomain "github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
)

// FeeEstimator prices legs from fee schedules and exposes the venue
// compatibility relation.
type FeeEstimator interface {
	Estimate(req feesDomain.TradeRequest) (*feesDomain.FeeEstimate, error)
	Categories() feesDomain.VenueCategories
}

// CostEstimator prices legs including spread and slippage.
type CostEstimator interface {
	EstimateCost(ctx context.Context, req feesDomain.TradeRequest) (*costsDomain.TradingCost, error)
	// Live reports whether live orderbooks back the estimates.
	Live() bool
}

// Reporter renders an analysis.
type Reporter interface {
	Report(w io.Writer, analysis *domain.ArbitrageAnalysis) error
}
