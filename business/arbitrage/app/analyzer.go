package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
)

// Analyzer validates legs, prices them concurrently and reduces the
// results into a profitability verdict.
type Analyzer struct {
	fees     FeeEstimator
	costs    CostEstimator
	recorder *metrics.Recorder
	log      logger.LoggerInterface
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCostEstimator prefers full-cost estimates when it is live.
func WithCostEstimator(c CostEstimator) Option {
	return func(a *Analyzer) {
		a.costs = c
	}
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(a *Analyzer) {
		a.recorder = r
	}
}

func WithLogger(log logger.LoggerInterface) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithIDGenerator overrides uuid.New.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(a *Analyzer) {
		a.newID = newID
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(fees FeeEstimator, opts ...Option) *Analyzer {
	a := &Analyzer{
		fees:  fees,
		log:   logger.NewDiscard(),
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze prices every leg and compares the net result to minProfitPct.
// Venue compatibility is checked for every pair of distinct venues before
// any leg is priced.
func (a *Analyzer) Analyze(
	ctx context.Context,
	legs []domain.TradeLeg,
	grossProfit decimal.Decimal,
	minProfitPct decimal.Decimal,
) (*domain.ArbitrageAnalysis, error) {
	if err := domain.ValidateCompatibility(legs, a.fees.Categories()); err != nil {
		a.log.Warn(ctx, "arbitrage legs rejected", "error", err)
		return nil, err
	}

	estimates, err := a.estimateLegs(ctx, legs)
	if err != nil {
		return nil, err
	}

	profit := NewProfitCalculator(minProfitPct).Calculate(
		grossProfit,
		domain.SumCosts(estimates),
		domain.TotalNotional(legs),
	)

	analysis := &domain.ArbitrageAnalysis{
		ID:           a.newID(),
		Timestamp:    a.now(),
		Legs:         legs,
		LegEstimates: estimates,
		ProfitResult: profit,
	}

	a.recorder.ArbitrageAnalysis(ctx, profit.IsProfitable)
	a.log.Info(ctx, "arbitrage analyzed",
		"analysis_id", analysis.ID.String(),
		"legs", len(legs),
		"total_costs", profit.TotalCosts.StringFixed(4),
		"net_profit_pct", profit.NetProfitPct.StringFixed(4),
		"profitable", profit.IsProfitable,
	)

	return analysis, nil
}

// estimateLegs prices legs concurrently. Results keep leg order; the
// reduction over them is a sum, so completion order does not matter.
func (a *Analyzer) estimateLegs(ctx context.Context, legs []domain.TradeLeg) ([]domain.LegEstimate, error) {
	estimates := make([]domain.LegEstimate, len(legs))
	useCosts := a.costs != nil && a.costs.Live()

	g, gctx := errgroup.WithContext(ctx)
	for i, leg := range legs {
		g.Go(func() error {
			req := leg.Request()
			if useCosts {
				cost, err := a.costs.EstimateCost(gctx, req)
				if err != nil {
					return err
				}
				estimates[i] = domain.FullCost(leg, cost)
				return nil
			}

			fee, err := a.fees.Estimate(req)
			if err != nil {
				return err
			}
			estimates[i] = domain.FeeOnly(leg, fee)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return estimates, nil
}
