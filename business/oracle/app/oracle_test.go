package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arbDomain "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	costsDomain "github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesApp "github.com/sanketagarwal/replay-fee-oracle/business/fees/app"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/fees/infra/schedule"
	orderbookApp "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func newOracle(t *testing.T, opts ...Option) *Oracle {
	t.Helper()
	schedules, err := schedule.NewLoader("", nil, logger.NewDiscard()).Load(context.Background())
	require.NoError(t, err)
	registry, err := feesApp.NewRegistry(schedules, feesApp.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	return New(registry, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

// bid 0.48, asks 0.50 x 1000 and 0.60 x 1000
const kalshiBook = `{"orderbook":{"yes":[[48,1000]],"no":[[50,1000],[40,1000]]}}`

type countingFetcher struct {
	calls atomic.Int32
	data  string
	err   error
}

func (f *countingFetcher) FetchOrderbook(_ context.Context, venue feesDomain.Venue, marketID string) (*orderbookApp.RawOrderbook, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &orderbookApp.RawOrderbook{
		Venue:     venue,
		MarketID:  marketID,
		Timestamp: fixedNow,
		Data:      json.RawMessage(f.data),
	}, nil
}

func TestOracle_Estimate(t *testing.T) {
	o := newOracle(t)

	tests := []struct {
		name         string
		req          feesDomain.TradeRequest
		wantExchange string
	}{
		{
			name: "probability scaled at midpoint",
			req: feesDomain.TradeRequest{
				Venue:     feesDomain.VenueKalshi,
				SizeUSD:   d("1000"),
				Price:     price("0.5"),
				OrderType: feesDomain.OrderTypeMarket,
			},
			wantExchange: "35",
		},
		{
			name: "flat taker 1bp",
			req: feesDomain.TradeRequest{
				Venue:     feesDomain.VenuePolymarket,
				SizeUSD:   d("10000"),
				OrderType: feesDomain.OrderTypeMarket,
				MarketID:  "will-it-rain",
			},
			wantExchange: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := o.Estimate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, est.Breakdown.ExchangeFee.Equal(d(tt.wantExchange)),
				"exchange fee %s, want %s", est.Breakdown.ExchangeFee, tt.wantExchange)
			assert.True(t, est.SizeUSD.Equal(tt.req.SizeUSD))
		})
	}
}

func TestOracle_EstimateUnsupportedVenue(t *testing.T) {
	_, err := newOracle(t).Estimate(context.Background(), feesDomain.TradeRequest{
		Venue:   "binance",
		SizeUSD: d("100"),
	})
	assert.Equal(t, apperror.CodeUnsupportedVenue, apperror.GetCode(err))
}

func TestOracle_EstimateWithPool(t *testing.T) {
	est, err := newOracle(t).EstimateWithPool(context.Background(),
		feesDomain.TradeRequest{Venue: feesDomain.VenueAerodrome, SizeUSD: d("10000")},
		feesDomain.PoolContext{
			Type:           feesDomain.PoolConcentrated,
			TickSpacing:    200,
			PriceImpactPct: price("0.3"),
		},
	)
	require.NoError(t, err)
	assert.True(t, est.Breakdown.ExchangeFee.Equal(d("30")))
	assert.True(t, est.Breakdown.SlippageEstimate.Equal(d("30")))
	assert.Equal(t, feesDomain.ConfidenceHigh, est.Confidence)
}

func TestOracle_CompareVenues(t *testing.T) {
	o := newOracle(t)
	size := d("2500")

	estimates, err := o.CompareVenues(context.Background(), size, CompareOptions{
		Price:     price("0.5"),
		OrderType: feesDomain.OrderTypeMarket,
	})
	require.NoError(t, err)

	schedules := o.Schedules()
	require.Len(t, estimates, len(schedules))

	seen := make(map[feesDomain.Venue]int)
	for _, est := range estimates {
		require.NotNil(t, est)
		assert.True(t, est.SizeUSD.Equal(size), "%s size %s", est.Venue, est.SizeUSD)
		seen[est.Venue]++
	}
	for _, s := range schedules {
		assert.Equal(t, 1, seen[s.Venue], "estimates for %s", s.Venue)
	}
}

func TestOracle_Schedules(t *testing.T) {
	o := newOracle(t)

	all := o.Schedules()
	assert.Len(t, all, 4)

	kalshi, err := o.Schedule(feesDomain.VenueKalshi)
	require.NoError(t, err)
	assert.Equal(t, feesDomain.VenueKalshi, kalshi.Venue)
	assert.NotEmpty(t, kalshi.Version)

	_, err = o.Schedule("binance")
	assert.Equal(t, apperror.CodeUnsupportedVenue, apperror.GetCode(err))
}

func TestOracle_EstimateCost(t *testing.T) {
	req := feesDomain.TradeRequest{
		Venue:     feesDomain.VenueKalshi,
		SizeUSD:   d("1100"),
		Price:     price("0.5"),
		OrderType: feesDomain.OrderTypeMarket,
		Side:      feesDomain.SideBuy,
		MarketID:  "KXINX-25JAN15",
	}

	t.Run("live book through fetcher", func(t *testing.T) {
		fetcher := &countingFetcher{data: kalshiBook}
		o := newOracle(t, WithFetcher(fetcher))
		require.True(t, o.Live())

		cost, err := o.EstimateCost(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, costsDomain.ModeLiveOrderbook, cost.Mode)
		assert.True(t, cost.TotalCostUSD.Equal(d("158.5")), "total %s", cost.TotalCostUSD)
		assert.Equal(t, int32(1), fetcher.calls.Load())
	})

	t.Run("fetch failure falls back", func(t *testing.T) {
		o := newOracle(t, WithFetcher(&countingFetcher{err: errors.New("connection refused")}))

		cost, err := o.EstimateCost(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, costsDomain.ModePublicSchedule, cost.Mode)
		assert.Equal(t, feesDomain.ConfidenceLow, cost.Confidence)
		assert.NotEmpty(t, cost.Fallback)
	})

	t.Run("empty payload falls back", func(t *testing.T) {
		empty := orderbookApp.FetcherFunc(func(context.Context, feesDomain.Venue, string) (*orderbookApp.RawOrderbook, error) {
			return nil, nil
		})
		o := newOracle(t, WithFetcher(empty))

		polyReq := req
		polyReq.Venue = feesDomain.VenuePolymarket
		polyReq.MarketID = "x"

		var (
			cost *costsDomain.TradingCost
			err  error
		)
		require.NotPanics(t, func() {
			cost, err = o.EstimateCost(context.Background(), polyReq)
		})
		require.NoError(t, err)
		assert.Equal(t, costsDomain.ModePublicSchedule, cost.Mode)
		assert.Equal(t, costsDomain.FallbackFetchFailed, cost.Fallback)
		assert.Equal(t, feesDomain.ConfidenceLow, cost.Confidence)
	})

	t.Run("fetch failure in live-only mode", func(t *testing.T) {
		o := newOracle(t,
			WithFetcher(&countingFetcher{err: errors.New("connection refused")}),
			WithLiveOnly(true),
		)

		_, err := o.EstimateCost(context.Background(), req)
		assert.Equal(t, apperror.CodeDataUnavailable, apperror.GetCode(err))
	})

	t.Run("no live data configured", func(t *testing.T) {
		o := newOracle(t)
		assert.False(t, o.Live())

		cost, err := o.EstimateCost(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, costsDomain.ModePublicSchedule, cost.Mode)
	})
}

func arbLegs() []arbDomain.TradeLeg {
	return []arbDomain.TradeLeg{
		{
			Venue:     feesDomain.VenueKalshi,
			Side:      feesDomain.SideBuy,
			SizeUSD:   d("1000"),
			Price:     price("0.475"),
			OrderType: feesDomain.OrderTypeMarket,
		},
		{
			Venue:     feesDomain.VenuePolymarket,
			Side:      feesDomain.SideSell,
			SizeUSD:   d("1000"),
			Price:     price("0.525"),
			OrderType: feesDomain.OrderTypeMarket,
			MarketID:  "inx-above-6000",
		},
	}
}

func TestOracle_AnalyzeArbitrage(t *testing.T) {
	o := newOracle(t)

	got, err := o.AnalyzeArbitrage(context.Background(), arbLegs(), d("50"), decimal.NullDecimal{})
	require.NoError(t, err)

	wantPct := d("50").Sub(got.TotalCosts).Div(d("2000")).Mul(d("100"))
	assert.True(t, got.TotalNotional.Equal(d("2000")))
	assert.True(t, got.NetProfitPct.Equal(wantPct))
	assert.True(t, got.MinProfitPct.Equal(d("0.5")), "default threshold %s", got.MinProfitPct)
	assert.Equal(t, got.NetProfitPct.GreaterThanOrEqual(d("0.5")), got.IsProfitable)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, fixedNow, got.Timestamp)

	// the same analysis is profitable exactly at its own net percentage
	atBoundary, err := o.AnalyzeArbitrage(context.Background(), arbLegs(), d("50"), decimal.NewNullDecimal(got.NetProfitPct))
	require.NoError(t, err)
	assert.True(t, atBoundary.IsProfitable)
}

func TestOracle_AnalyzeArbitrageRejectsIncompatibleLegs(t *testing.T) {
	fetcher := &countingFetcher{data: kalshiBook}
	o := newOracle(t, WithFetcher(fetcher))

	legs := arbLegs()
	legs[0].MarketID = "KXINX-25JAN15"
	legs[1].Venue = feesDomain.VenueAerodrome

	_, err := o.AnalyzeArbitrage(context.Background(), legs, d("50"), decimal.NullDecimal{})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeIncompatibleVenues, apperror.GetCode(err))
	assert.Zero(t, fetcher.calls.Load(), "orderbook fetched for rejected legs")
}

func TestOracle_AnalyzeArbitrageUsesLiveCosts(t *testing.T) {
	fetcher := &countingFetcher{data: kalshiBook}
	o := newOracle(t, WithFetcher(fetcher), WithMinProfitPct(d("1")))

	legs := arbLegs()[:1]
	legs[0].MarketID = "KXINX-25JAN15"

	got, err := o.AnalyzeArbitrage(context.Background(), legs, d("50"), decimal.NullDecimal{})
	require.NoError(t, err)
	require.Len(t, got.LegEstimates, 1)
	assert.Equal(t, arbDomain.KindFullCost, got.LegEstimates[0].Kind)
	assert.True(t, got.MinProfitPct.Equal(d("1")))
	assert.Equal(t, int32(1), fetcher.calls.Load())
}
