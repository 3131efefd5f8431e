// Package app is the public entry point of the fee oracle: fee
// estimates, total trading costs, schedules, venue comparison and
// arbitrage analysis behind one explicitly constructed instance.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	arbApp "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/app"
	arbDomain "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	costsApp "github.com/sanketagarwal/replay-fee-oracle/business/costs/app"
	costsDomain "github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesApp "github.com/sanketagarwal/replay-fee-oracle/business/fees/app"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	orderbookApp "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apm"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
)

// Oracle is safe for concurrent use. It holds no mutable state after New.
type Oracle struct {
	fees         *feesApp.Registry
	costs        *costsApp.Estimator
	analyzer     *arbApp.Analyzer
	minProfitPct decimal.Decimal
	recorder     *metrics.Recorder
	log          logger.LoggerInterface
	tracer       apm.Tracer
}

type options struct {
	costs        *costsApp.Estimator
	analyzer     *arbApp.Analyzer
	snapshots    costsApp.SnapshotProvider
	fetcher      orderbookApp.Fetcher
	liveOnly     bool
	minProfitPct decimal.Decimal
	recorder     *metrics.Recorder
	log          logger.LoggerInterface
	now          func() time.Time
}

// Option configures an Oracle.
type Option func(*options)

// WithEstimator uses a prebuilt cost estimator. Live data options are
// ignored when it is set.
func WithEstimator(e *costsApp.Estimator) Option {
	return func(o *options) {
		o.costs = e
	}
}

// WithAnalyzer uses a prebuilt arbitrage analyzer.
func WithAnalyzer(a *arbApp.Analyzer) Option {
	return func(o *options) {
		o.analyzer = a
	}
}

// WithFetcher enables live orderbooks read through f.
func WithFetcher(f orderbookApp.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithSnapshots enables live orderbooks from an already normalizing source.
func WithSnapshots(p costsApp.SnapshotProvider) Option {
	return func(o *options) {
		o.snapshots = p
	}
}

// WithLiveOnly makes EstimateCost fail instead of falling back to heuristics.
func WithLiveOnly(liveOnly bool) Option {
	return func(o *options) {
		o.liveOnly = liveOnly
	}
}

// WithMinProfitPct sets the default arbitrage threshold.
func WithMinProfitPct(pct decimal.Decimal) Option {
	return func(o *options) {
		o.minProfitPct = pct
	}
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

func WithLogger(log logger.LoggerInterface) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an Oracle over registry.
func New(registry *feesApp.Registry, opts ...Option) *Oracle {
	o := options{
		minProfitPct: arbApp.DefaultMinProfitPct,
		log:          logger.NewDiscard(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.snapshots == nil && o.fetcher != nil {
		o.snapshots = orderbookApp.NewService(o.fetcher, nil, o.log)
	}

	if o.costs == nil {
		costOpts := []costsApp.Option{
			costsApp.WithLiveOnly(o.liveOnly),
			costsApp.WithRecorder(o.recorder),
			costsApp.WithLogger(o.log),
			costsApp.WithClock(o.now),
		}
		if o.snapshots != nil {
			costOpts = append(costOpts, costsApp.WithSnapshots(o.snapshots))
		}
		o.costs = costsApp.NewEstimator(registry, costOpts...)
	}

	if o.analyzer == nil {
		o.analyzer = arbApp.NewAnalyzer(registry,
			arbApp.WithCostEstimator(o.costs),
			arbApp.WithRecorder(o.recorder),
			arbApp.WithLogger(o.log),
			arbApp.WithClock(o.now),
		)
	}

	return &Oracle{
		fees:         registry,
		costs:        o.costs,
		analyzer:     o.analyzer,
		minProfitPct: o.minProfitPct,
		recorder:     o.recorder,
		log:          o.log,
		tracer:       apm.NewTracer("oracle"),
	}
}

// Live reports whether cost estimates can use live orderbooks.
func (o *Oracle) Live() bool {
	return o.costs.Live()
}

// MinProfitPct is the default arbitrage threshold.
func (o *Oracle) MinProfitPct() decimal.Decimal {
	return o.minProfitPct
}

// Estimate returns the explicit fee for req.
func (o *Oracle) Estimate(ctx context.Context, req feesDomain.TradeRequest) (*feesDomain.FeeEstimate, error) {
	est, err := o.fees.Estimate(req)
	if err != nil {
		return nil, err
	}
	o.recorder.FeeEstimate(ctx, est.Venue.String(), string(est.Confidence))
	o.log.Debug(ctx, "fee estimated",
		"venue", est.Venue,
		"size_usd", est.SizeUSD.String(),
		"total_fee_usd", est.TotalFeeUSD.String(),
		"confidence", est.Confidence,
	)
	return est, nil
}

// EstimateWithPool estimates req routed through pool.
func (o *Oracle) EstimateWithPool(ctx context.Context, req feesDomain.TradeRequest, pool feesDomain.PoolContext) (*feesDomain.FeeEstimate, error) {
	return o.Estimate(ctx, req.WithPool(pool))
}

// EstimateCost returns explicit fees plus spread and slippage.
func (o *Oracle) EstimateCost(ctx context.Context, req feesDomain.TradeRequest) (*costsDomain.TradingCost, error) {
	ctx, span := o.tracer.StartSpanFromContext(ctx, "oracle.estimate_cost")
	defer span.End()
	span.SetAttributes(
		attribute.String("venue", req.Venue.String()),
		attribute.String("size_usd", req.SizeUSD.String()),
	)

	cost, err := o.costs.EstimateCost(ctx, req)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("mode", string(cost.Mode)),
		attribute.String("confidence", string(cost.Confidence)),
	)
	return cost, nil
}

// Schedule returns a copy of the venue's fee schedule.
func (o *Oracle) Schedule(venue feesDomain.Venue) (feesDomain.FeeSchedule, error) {
	return o.fees.Schedule(venue)
}

// Schedules returns copies of every loaded schedule.
func (o *Oracle) Schedules() []feesDomain.FeeSchedule {
	return o.fees.Schedules()
}

// AnalyzeArbitrage checks legs for compatibility, prices them and compares
// the net result against minProfitPct, or the configured default when
// minProfitPct is null.
func (o *Oracle) AnalyzeArbitrage(
	ctx context.Context,
	legs []arbDomain.TradeLeg,
	grossProfit decimal.Decimal,
	minProfitPct decimal.NullDecimal,
) (*arbDomain.ArbitrageAnalysis, error) {
	ctx, span := o.tracer.StartSpanFromContext(ctx, "oracle.analyze_arbitrage")
	defer span.End()

	threshold := o.minProfitPct
	if minProfitPct.Valid {
		threshold = minProfitPct.Decimal
	}
	span.SetAttributes(
		attribute.Int("legs", len(legs)),
		attribute.String("min_profit_pct", threshold.String()),
	)

	analysis, err := o.analyzer.Analyze(ctx, legs, grossProfit, threshold)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("analysis_id", analysis.ID.String()),
		attribute.Bool("profitable", analysis.IsProfitable),
	)
	return analysis, nil
}

// CompareOptions shapes the request sent to every venue in CompareVenues.
type CompareOptions struct {
	Price     decimal.NullDecimal
	OrderType feesDomain.OrderType
	Side      feesDomain.Side
	User      *feesDomain.UserContext
}

// CompareVenues estimates the same trade on every registered venue. The
// result holds one estimate per venue in registry order; ranking is left
// to the caller.
func (o *Oracle) CompareVenues(ctx context.Context, sizeUSD decimal.Decimal, opts CompareOptions) ([]*feesDomain.FeeEstimate, error) {
	venues := o.fees.Venues()
	estimates := make([]*feesDomain.FeeEstimate, len(venues))

	g, gctx := errgroup.WithContext(ctx)
	for i, venue := range venues {
		g.Go(func() error {
			est, err := o.Estimate(gctx, feesDomain.TradeRequest{
				Venue:     venue,
				SizeUSD:   sizeUSD,
				OrderType: opts.OrderType,
				Price:     opts.Price,
				Side:      opts.Side,
				User:      opts.User,
			})
			if err != nil {
				return err
			}
			estimates[i] = est
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return estimates, nil
}
