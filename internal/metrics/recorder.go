package metrics

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Recorder holds the oracle's counters. A nil *Recorder records nothing.
type Recorder struct {
	feeEstimates     metric.Int64Counter
	costEstimates    metric.Int64Counter
	costFallbacks    metric.Int64Counter
	analyses         metric.Int64Counter
	orderbookFetches metric.Int64Counter
}

// NewRecorder creates the counters on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	var (
		r   Recorder
		err error
	)
	if r.feeEstimates, err = meter.Int64Counter("fee_estimates_total",
		metric.WithDescription("Fee estimates produced, by venue and confidence")); err != nil {
		return nil, err
	}
	if r.costEstimates, err = meter.Int64Counter("cost_estimates_total",
		metric.WithDescription("Total-cost estimates produced, by venue and estimation mode")); err != nil {
		return nil, err
	}
	if r.costFallbacks, err = meter.Int64Counter("cost_fallbacks_total",
		metric.WithDescription("Heuristic fallbacks taken instead of a live orderbook, by reason")); err != nil {
		return nil, err
	}
	if r.analyses, err = meter.Int64Counter("arbitrage_analyses_total",
		metric.WithDescription("Arbitrage analyses completed, by verdict")); err != nil {
		return nil, err
	}
	if r.orderbookFetches, err = meter.Int64Counter("orderbook_fetches_total",
		metric.WithDescription("Orderbook payloads served, by venue and source (api, memory, redis)")); err != nil {
		return nil, err
	}
	return &r, nil
}

// NewNoopRecorder returns a recorder backed by a no-op meter.
func NewNoopRecorder() *Recorder {
	r, _ := NewRecorder(noop.NewMeterProvider().Meter("noop"))
	return r
}

func (r *Recorder) FeeEstimate(ctx context.Context, venue, confidence string) {
	if r == nil {
		return
	}
	r.feeEstimates.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", venue),
		attribute.String("confidence", confidence),
	))
}

func (r *Recorder) CostEstimate(ctx context.Context, venue, mode string) {
	if r == nil {
		return
	}
	r.costEstimates.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", venue),
		attribute.String("mode", mode),
	))
}

func (r *Recorder) CostFallback(ctx context.Context, venue, reason string) {
	if r == nil {
		return
	}
	r.costFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", venue),
		attribute.String("reason", reason),
	))
}

func (r *Recorder) ArbitrageAnalysis(ctx context.Context, profitable bool) {
	if r == nil {
		return
	}
	r.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("profitable", strconv.FormatBool(profitable))))
}

func (r *Recorder) OrderbookFetch(ctx context.Context, venue, source string) {
	if r == nil {
		return
	}
	r.orderbookFetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", venue),
		attribute.String("source", source),
	))
}
