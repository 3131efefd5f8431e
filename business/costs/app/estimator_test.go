package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesApp "github.com/sanketagarwal/replay-fee-oracle/business/fees/app"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/fees/infra/schedule"
	orderbookDomain "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func registry(t testing.TB) *feesApp.Registry {
	t.Helper()
	schedules, err := schedule.NewLoader("", nil, logger.NewDiscard()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r, err := feesApp.NewRegistry(schedules, feesApp.WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

type spyBook struct {
	calls    int
	snapshot *orderbookDomain.Snapshot
	err      error
}

func (s *spyBook) Supports(venue feesDomain.Venue) bool {
	return venue != feesDomain.VenueAerodrome
}

func (s *spyBook) Snapshot(_ context.Context, _ feesDomain.Venue, _ string) (*orderbookDomain.Snapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func level(p, size string) orderbookDomain.Level {
	return orderbookDomain.Level{Price: d(p), Size: d(size)}
}

// bid 0.48, asks 0.50 x 1000 and 0.60 x 1000, mid 0.49
func kalshiBook() *orderbookDomain.Snapshot {
	return orderbookDomain.NewSnapshot(feesDomain.VenueKalshi, "KXINX-25JAN15", fixedNow,
		[]orderbookDomain.Level{level("0.48", "1000")},
		[]orderbookDomain.Level{level("0.50", "1000"), level("0.60", "1000")},
		true)
}

func kalshiRequest(size string) feesDomain.TradeRequest {
	return feesDomain.TradeRequest{
		Venue:     feesDomain.VenueKalshi,
		SizeUSD:   d(size),
		OrderType: feesDomain.OrderTypeMarket,
		Price:     price("0.5"),
		MarketID:  "KXINX-25JAN15",
	}
}

func newEstimator(t *testing.T, opts ...Option) *Estimator {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEstimator(registry(t), opts...)
}

func hasAssumption(assumptions []string, substr string) bool {
	for _, a := range assumptions {
		if strings.Contains(a, substr) {
			return true
		}
	}
	return false
}

func TestEstimateCost_Heuristic(t *testing.T) {
	cost, err := newEstimator(t).EstimateCost(context.Background(), kalshiRequest("1000"))
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"explicit", cost.ExplicitCostUSD, "35"},
		{"spread", cost.SpreadCostUSD, "10"},
		{"slippage", cost.SlippageUSD, "5"},
		{"implicit", cost.ImplicitCostUSD, "15"},
		{"total", cost.TotalCostUSD, "50"},
		{"pct", cost.TotalCostPct, "5"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if cost.Mode != domain.ModePublicSchedule {
		t.Errorf("mode = %s, want %s", cost.Mode, domain.ModePublicSchedule)
	}
	if cost.Confidence != feesDomain.ConfidenceLow {
		t.Errorf("confidence = %s, want low", cost.Confidence)
	}
	if cost.Fallback != domain.FallbackLiveDisabled {
		t.Errorf("fallback = %s", cost.Fallback)
	}
	if cost.Side != feesDomain.SideBuy || !hasAssumption(cost.Assumptions, "BUY assumed") {
		t.Errorf("side default not disclosed: %v", cost.Assumptions)
	}
	if !hasAssumption(cost.Assumptions, "Live orderbook data not configured") {
		t.Errorf("fallback not disclosed: %v", cost.Assumptions)
	}
	if cost.Orderbook != nil || cost.Fill != nil {
		t.Error("heuristic cost should not embed a book")
	}
}

func TestEstimateCost_SqrtSlippageScaling(t *testing.T) {
	cost, err := newEstimator(t).EstimateCost(context.Background(), kalshiRequest("4000"))
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	// 0.5% * 4000 * sqrt(4000/1000)
	if !cost.SlippageUSD.Equal(d("40")) {
		t.Errorf("slippage = %s, want 40", cost.SlippageUSD)
	}
}

func TestEstimateCost_LiveOrderbook(t *testing.T) {
	book := &spyBook{snapshot: kalshiBook()}
	req := kalshiRequest("1100")
	req.Side = feesDomain.SideBuy

	cost, err := newEstimator(t, WithSnapshots(book)).EstimateCost(context.Background(), req)
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}

	// fee 0.07 * 2200 * 0.25; 2000 contracts at avg 0.55; half-spread 0.01
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"explicit", cost.ExplicitCostUSD, "38.5"},
		{"slippage", cost.SlippageUSD, "100"},
		{"spread", cost.SpreadCostUSD, "20"},
		{"total", cost.TotalCostUSD, "158.5"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if cost.Mode != domain.ModeLiveOrderbook {
		t.Errorf("mode = %s, want %s", cost.Mode, domain.ModeLiveOrderbook)
	}
	if cost.Confidence != cost.Fee.Confidence {
		t.Errorf("confidence = %s, want fee confidence %s", cost.Confidence, cost.Fee.Confidence)
	}
	if cost.Orderbook == nil || cost.Fill == nil || cost.Fill.LevelsConsumed != 2 {
		t.Errorf("book not embedded: %+v", cost.Fill)
	}
	if hasAssumption(cost.Assumptions, "BUY assumed") {
		t.Error("explicit side reported as assumed")
	}
	if book.calls != 1 {
		t.Errorf("snapshot calls = %d, want 1", book.calls)
	}
}

func TestEstimateCost_ExhaustedBookLowersConfidence(t *testing.T) {
	book := &spyBook{snapshot: kalshiBook()}

	cost, err := newEstimator(t, WithSnapshots(book)).EstimateCost(context.Background(), kalshiRequest("5000"))
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	if cost.Confidence == feesDomain.ConfidenceHigh {
		t.Error("exhausted book kept high confidence")
	}
	if !hasAssumption(cost.Assumptions, "Book depth exhausted") {
		t.Errorf("exhaustion not disclosed: %v", cost.Assumptions)
	}
}

func TestEstimateCost_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		book       *spyBook
		mutate     func(*feesDomain.TradeRequest)
		wantReason domain.FallbackReason
		wantCalls  int
		wantText   string
	}{
		{
			name:       "fetch failure",
			book:       &spyBook{err: errors.New("connection refused")},
			wantReason: domain.FallbackFetchFailed,
			wantCalls:  1,
			wantText:   "connection refused",
		},
		{
			name:       "no market id",
			book:       &spyBook{snapshot: kalshiBook()},
			mutate:     func(r *feesDomain.TradeRequest) { r.MarketID = "" },
			wantReason: domain.FallbackNoMarketID,
			wantText:   "No market id supplied",
		},
		{
			name: "empty side",
			book: &spyBook{snapshot: orderbookDomain.NewSnapshot(feesDomain.VenueKalshi, "m", fixedNow,
				[]orderbookDomain.Level{level("0.45", "10")}, nil, true)},
			wantReason: domain.FallbackEmptyBook,
			wantCalls:  1,
			wantText:   "no liquidity on the BUY side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := kalshiRequest("1000")
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			cost, err := newEstimator(t, WithSnapshots(tt.book)).EstimateCost(context.Background(), req)
			if err != nil {
				t.Fatalf("EstimateCost() error = %v, fallback must not surface", err)
			}
			if cost.Fallback != tt.wantReason {
				t.Errorf("fallback = %s, want %s", cost.Fallback, tt.wantReason)
			}
			if cost.Confidence != feesDomain.ConfidenceLow {
				t.Errorf("confidence = %s, want low", cost.Confidence)
			}
			if !hasAssumption(cost.Assumptions, tt.wantText) {
				t.Errorf("assumptions %v missing %q", cost.Assumptions, tt.wantText)
			}
			if tt.book.calls != tt.wantCalls {
				t.Errorf("snapshot calls = %d, want %d", tt.book.calls, tt.wantCalls)
			}
			if !cost.TotalCostUSD.Equal(d("50")) {
				t.Errorf("total = %s, want heuristic 50", cost.TotalCostUSD)
			}
		})
	}
}

func TestEstimateCost_LiveOnly(t *testing.T) {
	failing := &spyBook{err: errors.New("timeout")}
	_, err := newEstimator(t, WithSnapshots(failing), WithLiveOnly(true)).EstimateCost(context.Background(), kalshiRequest("1000"))
	if got := apperror.GetCode(err); got != apperror.CodeDataUnavailable {
		t.Errorf("code = %s, want %s", got, apperror.CodeDataUnavailable)
	}

	_, err = newEstimator(t, WithLiveOnly(true)).EstimateCost(context.Background(), kalshiRequest("1000"))
	if got := apperror.GetCode(err); got != apperror.CodeDataUnavailable {
		t.Errorf("code without provider = %s, want %s", got, apperror.CodeDataUnavailable)
	}

	ok := &spyBook{snapshot: kalshiBook()}
	cost, err := newEstimator(t, WithSnapshots(ok), WithLiveOnly(true)).EstimateCost(context.Background(), kalshiRequest("1000"))
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	if cost.Mode != domain.ModeLiveOrderbook {
		t.Errorf("mode = %s", cost.Mode)
	}
}

func TestEstimateCost_QuotedPoolSlippage(t *testing.T) {
	req := feesDomain.TradeRequest{
		Venue:     feesDomain.VenueAerodrome,
		SizeUSD:   d("10000"),
		OrderType: feesDomain.OrderTypeMarket,
		MarketID:  "0xsomepool",
		Pool: &feesDomain.PoolContext{
			Type:           feesDomain.PoolConcentrated,
			TickSpacing:    200,
			PriceImpactPct: decimal.NewNullDecimal(d("0.3")),
		},
	}
	book := &spyBook{}

	cost, err := newEstimator(t, WithSnapshots(book)).EstimateCost(context.Background(), req)
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}

	// exchange 30 + gas 0.02; quoted slippage 30; half of 0.1% spread on 10000
	if !cost.ExplicitCostUSD.Equal(d("30.02")) {
		t.Errorf("explicit = %s, want 30.02", cost.ExplicitCostUSD)
	}
	if !cost.SlippageUSD.Equal(d("30")) {
		t.Errorf("slippage = %s, want quoted 30", cost.SlippageUSD)
	}
	if !cost.SpreadCostUSD.Equal(d("5")) {
		t.Errorf("spread = %s, want 5", cost.SpreadCostUSD)
	}
	if !cost.TotalCostUSD.Equal(d("65.02")) {
		t.Errorf("total = %s, want 65.02", cost.TotalCostUSD)
	}
	if cost.Fallback != domain.FallbackNoOrderbook || book.calls != 0 {
		t.Errorf("fallback = %s, calls = %d", cost.Fallback, book.calls)
	}
	if !hasAssumption(cost.Assumptions, "quoted price impact") {
		t.Errorf("quoted slippage not disclosed: %v", cost.Assumptions)
	}
}

func TestEstimateCost_AccountSpecificMode(t *testing.T) {
	req := feesDomain.TradeRequest{
		Venue:     feesDomain.VenueHyperliquid,
		SizeUSD:   d("10000"),
		OrderType: feesDomain.OrderTypeMarket,
		MarketID:  "ETH",
		User:      &feesDomain.UserContext{TrailingVolumeUSD: d("30000000"), StakedBalance: d("150")},
	}

	cost, err := newEstimator(t).EstimateCost(context.Background(), req)
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	if cost.Mode != domain.ModeAccountSpecific {
		t.Errorf("mode = %s, want %s", cost.Mode, domain.ModeAccountSpecific)
	}
}

func TestEstimateCost_DegenerateSize(t *testing.T) {
	book := &spyBook{snapshot: kalshiBook()}

	cost, err := newEstimator(t, WithSnapshots(book)).EstimateCost(context.Background(), kalshiRequest("0"))
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	if !cost.TotalCostUSD.IsZero() || !cost.TotalCostPct.IsZero() {
		t.Errorf("total = %s (%s%%), want zero", cost.TotalCostUSD, cost.TotalCostPct)
	}
	if cost.Confidence != feesDomain.ConfidenceLow {
		t.Errorf("confidence = %s, want low", cost.Confidence)
	}
	if book.calls != 0 {
		t.Errorf("snapshot calls = %d, want 0", book.calls)
	}
}

func TestEstimateCost_UnsupportedVenue(t *testing.T) {
	req := kalshiRequest("1000")
	req.Venue = "binance"

	_, err := newEstimator(t).EstimateCost(context.Background(), req)
	if got := apperror.GetCode(err); got != apperror.CodeUnsupportedVenue {
		t.Errorf("code = %s, want %s", got, apperror.CodeUnsupportedVenue)
	}
}

func TestEstimateCost_DoesNotMutateFeeAssumptions(t *testing.T) {
	cost, err := newEstimator(t).EstimateCost(context.Background(), kalshiRequest("1000"))
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	if len(cost.Fee.Assumptions) >= len(cost.Assumptions) {
		t.Errorf("cost assumptions (%d) should extend fee assumptions (%d)", len(cost.Assumptions), len(cost.Fee.Assumptions))
	}
	for _, a := range cost.Fee.Assumptions {
		if strings.Contains(a, "heuristic") {
			t.Errorf("fee estimate picked up a cost assumption: %q", a)
		}
	}
}

func TestEstimateCost_UnrecognizedSideDefaultsToBuy(t *testing.T) {
	req := kalshiRequest("1000")
	req.Side = "FOO"

	cost, err := newEstimator(t).EstimateCost(context.Background(), req)
	if err != nil {
		t.Fatalf("EstimateCost() error = %v", err)
	}
	if cost.Side != feesDomain.SideBuy {
		t.Errorf("side = %s, want BUY", cost.Side)
	}
	if !hasAssumption(cost.Assumptions, `Unrecognized side "FOO"; BUY assumed`) {
		t.Errorf("side default not disclosed: %v", cost.Assumptions)
	}
	if hasAssumption(cost.Assumptions, "No side supplied") {
		t.Errorf("unrecognized side reported as missing: %v", cost.Assumptions)
	}
}
