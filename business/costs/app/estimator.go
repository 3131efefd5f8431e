package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	orderbookDomain "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/shopspring/decimal"
)

// Estimator combines a fee estimate with spread and slippage taken from a
// live book when one is available, or from schedule heuristics otherwise.
type Estimator struct {
	fees     FeeEstimator
	book     SnapshotProvider
	liveOnly bool
	recorder *metrics.Recorder
	log      logger.LoggerInterface
	now      func() time.Time
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSnapshots enables live orderbook costs.
func WithSnapshots(p SnapshotProvider) Option {
	return func(e *Estimator) {
		e.book = p
	}
}

// WithLiveOnly makes EstimateCost fail with DATA_UNAVAILABLE instead of
// falling back to heuristics.
func WithLiveOnly(liveOnly bool) Option {
	return func(e *Estimator) {
		e.liveOnly = liveOnly
	}
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(e *Estimator) {
		e.recorder = r
	}
}

func WithLogger(log logger.LoggerInterface) Option {
	return func(e *Estimator) {
		e.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		e.now = now
	}
}

// NewEstimator creates an Estimator over fees.
func NewEstimator(fees FeeEstimator, opts ...Option) *Estimator {
	e := &Estimator{
		fees: fees,
		log:  logger.NewDiscard(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Live reports whether a snapshot provider is configured.
func (e *Estimator) Live() bool {
	return e.book != nil
}

// EstimateCost returns the total cost of req. Only an unsupported venue, or
// a missing live book in live-only mode, is an error; fetch failures fall
// back to heuristics with low confidence and an explanatory assumption.
func (e *Estimator) EstimateCost(ctx context.Context, req feesDomain.TradeRequest) (*domain.TradingCost, error) {
	fee, err := e.fees.Estimate(req)
	if err != nil {
		return nil, err
	}
	schedule, err := e.fees.Schedule(req.Venue)
	if err != nil {
		return nil, err
	}

	assumptions := slices.Clone(fee.Assumptions)
	side := req.Side
	switch side {
	case feesDomain.SideBuy, feesDomain.SideSell:
	case "":
		side = feesDomain.SideBuy
		assumptions = append(assumptions, "No side supplied; BUY assumed")
	default:
		side = feesDomain.SideBuy
		assumptions = append(assumptions, fmt.Sprintf("Unrecognized side %q; BUY assumed", req.Side))
	}

	explicit := fee.Breakdown.Explicit()
	quoted := fee.Breakdown.SlippageEstimate

	if !req.SizeUSD.IsPositive() {
		cost := domain.NewTradingCost(fee, side, explicit, domain.Implicit{Spread: decimal.Zero, Slippage: decimal.Zero},
			fallbackMode(req), feesDomain.ConfidenceLow, assumptions, e.now())
		e.recorder.CostEstimate(ctx, req.Venue.String(), string(cost.Mode))
		return cost, nil
	}

	snapshot, fill, reason, fetchErr := e.live(ctx, req, side)

	var cost *domain.TradingCost
	if reason == "" {
		cost = e.liveCost(fee, side, explicit, quoted, snapshot, fill, assumptions)
	} else {
		if e.liveOnly {
			opts := []apperror.Option{
				apperror.WithContext(fmt.Sprintf("venue=%s market=%s reason=%s", req.Venue, req.MarketID, reason)),
			}
			if fetchErr != nil {
				opts = append(opts, apperror.WithCause(fetchErr))
			}
			return nil, apperror.New(apperror.CodeDataUnavailable, opts...)
		}
		cost = e.heuristicCost(ctx, req, fee, schedule.Heuristics, side, explicit, quoted, reason, fetchErr, assumptions)
	}

	e.recorder.CostEstimate(ctx, req.Venue.String(), string(cost.Mode))
	return cost, nil
}

func (e *Estimator) live(
	ctx context.Context, req feesDomain.TradeRequest, side feesDomain.Side,
) (*orderbookDomain.Snapshot, orderbookDomain.Fill, domain.FallbackReason, error) {
	switch {
	case e.book == nil:
		return nil, orderbookDomain.Fill{}, domain.FallbackLiveDisabled, nil
	case req.MarketID == "":
		return nil, orderbookDomain.Fill{}, domain.FallbackNoMarketID, nil
	case !e.book.Supports(req.Venue):
		return nil, orderbookDomain.Fill{}, domain.FallbackNoOrderbook, nil
	}

	snapshot, err := e.book.Snapshot(ctx, req.Venue, req.MarketID)
	if err != nil {
		return nil, orderbookDomain.Fill{}, domain.FallbackFetchFailed, err
	}

	fill, ok := snapshot.Walk(side, req.SizeUSD)
	if !ok {
		return snapshot, orderbookDomain.Fill{}, domain.FallbackEmptyBook, nil
	}
	return snapshot, fill, "", nil
}

func (e *Estimator) liveCost(
	fee *feesDomain.FeeEstimate,
	side feesDomain.Side,
	explicit, quoted decimal.Decimal,
	snapshot *orderbookDomain.Snapshot,
	fill orderbookDomain.Fill,
	assumptions []string,
) *domain.TradingCost {
	confidence := fee.Confidence
	implicit := domain.Implicit{
		Spread:   snapshot.SpreadCost(side, fill.Contracts),
		Slippage: fill.Slippage,
	}

	assumptions = append(assumptions, fmt.Sprintf(
		"Live orderbook: %s walked %d level(s), avg fill %s vs best %s",
		side, fill.LevelsConsumed, fill.AvgPrice.StringFixed(4), fill.BestPrice.StringFixed(4)))

	if quoted.IsPositive() {
		implicit.Slippage = quoted
		assumptions = append(assumptions, "Quoted price impact used as slippage instead of the book walk")
	}
	if fill.Exhausted() {
		confidence = feesDomain.LowerConfidence(confidence, feesDomain.ConfidenceMedium)
		assumptions = append(assumptions, fmt.Sprintf(
			"Book depth exhausted; remaining $%s assumed filled at worst level %s",
			fill.UnfilledUSD.StringFixed(2), fill.WorstPrice.String()))
	}

	cost := domain.NewTradingCost(fee, side, explicit, implicit, domain.ModeLiveOrderbook, confidence, assumptions, e.now())
	cost.Orderbook = snapshot
	cost.Fill = &fill
	return cost
}

func (e *Estimator) heuristicCost(
	ctx context.Context,
	req feesDomain.TradeRequest,
	fee *feesDomain.FeeEstimate,
	h feesDomain.Heuristics,
	side feesDomain.Side,
	explicit, quoted decimal.Decimal,
	reason domain.FallbackReason,
	fetchErr error,
	assumptions []string,
) *domain.TradingCost {
	implicit := domain.Implicit{
		Spread:   domain.HeuristicSpread(req.SizeUSD, h.TypicalSpreadPct),
		Slippage: domain.HeuristicSlippage(req.SizeUSD, h.BaseSlippagePct),
	}
	if quoted.IsPositive() {
		implicit.Slippage = quoted
	}

	assumptions = append(assumptions, fallbackAssumption(req, side, reason, fetchErr, h, quoted.IsPositive()))

	e.recorder.CostFallback(ctx, req.Venue.String(), string(reason))
	if reason == domain.FallbackLiveDisabled {
		e.log.Debug(ctx, "cost estimated from heuristics", "venue", req.Venue, "reason", reason)
	} else {
		e.log.Warn(ctx, "falling back to heuristic costs",
			"venue", req.Venue, "market_id", req.MarketID, "reason", reason, "error", fetchErr)
	}

	cost := domain.NewTradingCost(fee, side, explicit, implicit, fallbackMode(req), feesDomain.ConfidenceLow, assumptions, e.now())
	cost.Fallback = reason
	return cost
}

func fallbackMode(req feesDomain.TradeRequest) domain.Mode {
	if req.User != nil {
		return domain.ModeAccountSpecific
	}
	return domain.ModePublicSchedule
}

func fallbackAssumption(
	req feesDomain.TradeRequest,
	side feesDomain.Side,
	reason domain.FallbackReason,
	fetchErr error,
	h feesDomain.Heuristics,
	quotedSlippage bool,
) string {
	var why string
	switch reason {
	case domain.FallbackLiveDisabled:
		why = "Live orderbook data not configured"
	case domain.FallbackNoMarketID:
		why = "No market id supplied"
	case domain.FallbackNoOrderbook:
		why = fmt.Sprintf("%s publishes no orderbook", req.Venue)
	case domain.FallbackFetchFailed:
		why = fmt.Sprintf("Orderbook fetch failed (%v)", fetchErr)
	case domain.FallbackEmptyBook:
		why = fmt.Sprintf("Orderbook has no liquidity on the %s side", side)
	}

	slippage := fmt.Sprintf("sqrt-scaled slippage (%s%% base at $%s)",
		h.BaseSlippagePct.String(), domain.ReferenceSizeUSD.String())
	if quotedSlippage {
		slippage = "quoted price impact as slippage"
	}

	return fmt.Sprintf("%s; heuristic half-spread (%s%% typical) and %s used, confidence lowered to low",
		why, h.TypicalSpreadPct.String(), slippage)
}
