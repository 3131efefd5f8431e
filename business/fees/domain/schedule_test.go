package domain

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validFlatSchedule() *FeeSchedule {
	return &FeeSchedule{
		Venue:    VenuePolymarket,
		Category: CategoryPredictionMarket,
		Model:    ModelFlat,
		Version:  "2025-01",
		Flat: &FlatSchedule{
			TakerBps:              d("1"),
			ShortDurationTakerBps: d("100"),
			ShortDurationMarkers:  []string{"-15m-"},
			GasUSD:                d("0.01"),
		},
	}
}

func TestFeeSchedule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *FeeSchedule)
		wantErr string
	}{
		{name: "valid", mutate: func(*FeeSchedule) {}},
		{name: "missing_venue", mutate: func(s *FeeSchedule) { s.Venue = "" }, wantErr: "venue is required"},
		{name: "missing_version", mutate: func(s *FeeSchedule) { s.Version = "" }, wantErr: "version is required"},
		{name: "unknown_category", mutate: func(s *FeeSchedule) { s.Category = "options" }, wantErr: "unknown category"},
		{name: "model_section_mismatch", mutate: func(s *FeeSchedule) { s.Model = ModelPool }, wantErr: "requires a pool section"},
		{
			name: "two_sections",
			mutate: func(s *FeeSchedule) {
				s.Probability = &ProbabilitySchedule{TakerCoefficient: d("0.07")}
			},
			wantErr: "exactly one model section",
		},
		{name: "negative_rate", mutate: func(s *FeeSchedule) { s.Flat.TakerBps = d("-1") }, wantErr: "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validFlatSchedule()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTieredSchedule_Validate(t *testing.T) {
	s := &FeeSchedule{
		Venue:    VenueHyperliquid,
		Category: CategoryPerpetual,
		Model:    ModelVolumeTiered,
		Version:  "v1",
		Tiered: &TieredSchedule{
			VolumeTiers: []VolumeTier{
				{MinVolumeUSD: d("0"), TakerBps: d("4.5")},
				{MinVolumeUSD: d("5000000"), TakerBps: d("4")},
			},
			StakingTiers: []StakingTier{{MinStaked: d("10"), DiscountPct: d("5")}},
		},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Tiered.StakingTiers[0].DiscountPct = d("101")
	if err := s.Validate(); err == nil {
		t.Error("expected discount above 100% to be rejected")
	}

	s.Tiered.StakingTiers[0].DiscountPct = d("5")
	s.Tiered.VolumeTiers[1].MinVolumeUSD = d("0")
	if err := s.Validate(); err == nil {
		t.Error("expected non-ascending tiers to be rejected")
	}
}

func TestFlatSchedule_RateBps(t *testing.T) {
	f := validFlatSchedule().Flat
	f.MakerBps = d("0")
	f.ShortDurationMakerBps = d("0")

	tests := []struct {
		name      string
		orderType OrderType
		marketID  string
		wantBps   string
		wantShort bool
	}{
		{"taker_standard", OrderTypeMarket, "will-it-rain", "1", false},
		{"maker_standard", OrderTypeLimit, "will-it-rain", "0", false},
		{"taker_short_duration", OrderTypeMarket, "btc-updown-15m-1700000000", "100", true},
		{"marker_case_insensitive", OrderTypeMarket, "BTC-UPDOWN-15M-1", "100", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bps, short := f.RateBps(tt.orderType, tt.marketID)
			if !bps.Equal(d(tt.wantBps)) || short != tt.wantShort {
				t.Errorf("RateBps = %s, %v; want %s, %v", bps, short, tt.wantBps, tt.wantShort)
			}
		})
	}
}

func TestProbabilitySchedule_MakerCoefficientFor(t *testing.T) {
	p := ProbabilitySchedule{
		TakerCoefficient: d("0.07"),
		MakerCoefficient: d("0.0175"),
		MakerFeeSeries:   []string{"INX", "NASDAQ100"},
	}

	if c, ok := p.MakerCoefficientFor("INXD-25JAN10-B5900"); !ok || !c.Equal(d("0.0175")) {
		t.Errorf("INX market: got %s, %v", c, ok)
	}
	if c, ok := p.MakerCoefficientFor("kxnasdaq100u-25"); ok || !c.IsZero() {
		t.Errorf("prefix must match from the start: got %s, %v", c, ok)
	}
	if c, ok := p.MakerCoefficientFor("PRES-2028"); ok || !c.IsZero() {
		t.Errorf("non-series market: got %s, %v", c, ok)
	}
}

func TestPoolSchedule_RateAndLookup(t *testing.T) {
	addr := common.HexToAddress("0xb2cc224c1c9feE385f8ad6a55b4d94E92359DC59")
	p := PoolSchedule{
		VolatileBps: d("30"),
		StableBps:   d("5"),
		TickSpacings: []TickSpacingFee{
			{TickSpacing: 1, FeeBps: d("1")},
			{TickSpacing: 100, FeeBps: d("5")},
		},
		KnownPools: []KnownPool{{Address: addr, Name: "WETH/USDC CL100", Type: PoolConcentrated, TickSpacing: 100}},
	}

	tests := []struct {
		poolType  PoolType
		tick      int
		wantBps   string
		wantExact bool
	}{
		{PoolVolatile, 0, "30", true},
		{PoolStable, 0, "5", true},
		{PoolConcentrated, 1, "1", true},
		{PoolConcentrated, 100, "5", true},
		{PoolConcentrated, 7, "30", false},
		{"", 0, "30", false},
	}
	for _, tt := range tests {
		bps, exact := p.RateBps(tt.poolType, tt.tick)
		if !bps.Equal(d(tt.wantBps)) || exact != tt.wantExact {
			t.Errorf("RateBps(%s, %d) = %s, %v; want %s, %v", tt.poolType, tt.tick, bps, exact, tt.wantBps, tt.wantExact)
		}
	}

	pool, ok := p.FindPool(strings.ToLower(addr.Hex()))
	if !ok || pool.TickSpacing != 100 {
		t.Errorf("FindPool lowercase = %+v, %v", pool, ok)
	}
	if _, ok := p.FindPool("WETH-USDC"); ok {
		t.Error("non-address id should not match")
	}
}

func TestFeeSchedule_CloneIsDeep(t *testing.T) {
	s := *validFlatSchedule()
	c := s.Clone()
	c.Flat.ShortDurationMarkers[0] = "mutated"
	c.Flat.TakerBps = d("99")

	if s.Flat.ShortDurationMarkers[0] != "-15m-" || !s.Flat.TakerBps.Equal(d("1")) {
		t.Error("mutating the clone changed the original schedule")
	}
}

func TestVenueCategories_Compatible(t *testing.T) {
	vc := VenueCategories{
		VenueKalshi:      CategoryPredictionMarket,
		VenuePolymarket:  CategoryPredictionMarket,
		VenueHyperliquid: CategoryPerpetual,
	}

	tests := []struct {
		a, b Venue
		want bool
	}{
		{VenueKalshi, VenuePolymarket, true},
		{VenuePolymarket, VenueKalshi, true},
		{VenueKalshi, VenueHyperliquid, false},
		{VenueKalshi, VenueKalshi, false},
		{VenueKalshi, "unknown", false},
	}
	for _, tt := range tests {
		if got := vc.Compatible(tt.a, tt.b); got != tt.want {
			t.Errorf("Compatible(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFeeBreakdown_TotalNotClamped(t *testing.T) {
	b := FeeBreakdown{ExchangeFee: d("1"), GasFee: d("0.5"), Rebate: d("3")}
	if got := b.Total(); !got.Equal(d("-1.5")) {
		t.Errorf("Total = %s, want -1.5", got)
	}

	b.SlippageEstimate = d("2")
	if got := b.Explicit(); !got.Equal(d("-1.5")) {
		t.Errorf("Explicit = %s, want -1.5", got)
	}
	if got := b.Total(); !got.Equal(d("0.5")) {
		t.Errorf("Total = %s, want 0.5", got)
	}
}

func TestPercent_ZeroGuard(t *testing.T) {
	if got := Percent(d("5"), decimal.Zero); !got.IsZero() {
		t.Errorf("Percent(5, 0) = %s, want 0", got)
	}
	if got := Percent(d("35"), d("1000")); !got.Equal(d("3.5")) {
		t.Errorf("Percent(35, 1000) = %s, want 3.5", got)
	}
}

func TestLowerConfidence(t *testing.T) {
	if got := LowerConfidence(ConfidenceHigh, ConfidenceMedium); got != ConfidenceMedium {
		t.Errorf("got %s, want medium", got)
	}
	if got := LowerConfidence(ConfidenceLow, ConfidenceHigh); got != ConfidenceLow {
		t.Errorf("got %s, want low", got)
	}
}
