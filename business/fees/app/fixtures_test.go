package app

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

const (
	wethUSDCVolatile = "0xcDAC0d6c6C59727a65F871236188350531885C43"
	wethUSDCCL100    = "0xb2cc224c1c9feE385f8ad6a55b4d94E92359DC59"
)

func kalshiSchedule() domain.FeeSchedule {
	return domain.FeeSchedule{
		Venue:      domain.VenueKalshi,
		Category:   domain.CategoryPredictionMarket,
		Model:      domain.ModelProbabilityScaled,
		Version:    "2025-01",
		Source:     "kalshi.com/docs/kalshi-fee-schedule.pdf",
		Heuristics: domain.Heuristics{TypicalSpreadPct: d("2"), BaseSlippagePct: d("0.5")},
		Probability: &domain.ProbabilitySchedule{
			TakerCoefficient: d("0.07"),
			MakerCoefficient: d("0.0175"),
			MakerFeeSeries:   []string{"INX", "KXINX", "NASDAQ100", "KXNASDAQ100"},
		},
	}
}

func polymarketSchedule() domain.FeeSchedule {
	return domain.FeeSchedule{
		Venue:      domain.VenuePolymarket,
		Category:   domain.CategoryPredictionMarket,
		Model:      domain.ModelFlat,
		Version:    "2025-01",
		Heuristics: domain.Heuristics{TypicalSpreadPct: d("1.5"), BaseSlippagePct: d("0.4")},
		Flat: &domain.FlatSchedule{
			TakerBps:              d("1"),
			MakerBps:              d("0"),
			ShortDurationTakerBps: d("100"),
			ShortDurationMakerBps: d("0"),
			ShortDurationMarkers:  []string{"updown-15m", "-15m-"},
			MinFeeUSD:             d("0"),
			GasUSD:                d("0.01"),
		},
	}
}

func hyperliquidSchedule() domain.FeeSchedule {
	return domain.FeeSchedule{
		Venue:      domain.VenueHyperliquid,
		Category:   domain.CategoryPerpetual,
		Model:      domain.ModelVolumeTiered,
		Version:    "2025-01",
		Heuristics: domain.Heuristics{TypicalSpreadPct: d("0.02"), BaseSlippagePct: d("0.01")},
		Tiered: &domain.TieredSchedule{
			VolumeWindowDays: 14,
			StakingAsset:     "HYPE",
			VolumeTiers: []domain.VolumeTier{
				{MinVolumeUSD: d("0"), TakerBps: d("4.5"), MakerBps: d("1.5")},
				{MinVolumeUSD: d("5000000"), TakerBps: d("4"), MakerBps: d("1.2")},
				{MinVolumeUSD: d("25000000"), TakerBps: d("3.5"), MakerBps: d("0.8")},
				{MinVolumeUSD: d("100000000"), TakerBps: d("3"), MakerBps: d("0.4")},
			},
			StakingTiers: []domain.StakingTier{
				{MinStaked: d("10"), DiscountPct: d("5")},
				{MinStaked: d("100"), DiscountPct: d("10")},
				{MinStaked: d("1000"), DiscountPct: d("15")},
			},
			GasUSD: d("0"),
		},
	}
}

func aerodromeSchedule() domain.FeeSchedule {
	return domain.FeeSchedule{
		Venue:      domain.VenueAerodrome,
		Category:   domain.CategorySpotDEX,
		Model:      domain.ModelPool,
		Version:    "2025-01",
		Heuristics: domain.Heuristics{TypicalSpreadPct: d("0.1"), BaseSlippagePct: d("0.2")},
		Pool: &domain.PoolSchedule{
			VolatileBps: d("30"),
			StableBps:   d("5"),
			TickSpacings: []domain.TickSpacingFee{
				{TickSpacing: 1, FeeBps: d("1")},
				{TickSpacing: 50, FeeBps: d("5")},
				{TickSpacing: 100, FeeBps: d("5")},
				{TickSpacing: 200, FeeBps: d("30")},
				{TickSpacing: 2000, FeeBps: d("100")},
			},
			KnownPools: []domain.KnownPool{
				{Address: common.HexToAddress(wethUSDCVolatile), Name: "vAMM-WETH/USDC", Type: domain.PoolVolatile},
				{Address: common.HexToAddress(wethUSDCCL100), Name: "CL100-WETH/USDC", Type: domain.PoolConcentrated, TickSpacing: 100},
			},
			GasUSD: d("0.02"),
		},
	}
}

func allSchedules() []domain.FeeSchedule {
	return []domain.FeeSchedule{kalshiSchedule(), polymarketSchedule(), hyperliquidSchedule(), aerodromeSchedule()}
}

func mustCalculator(s domain.FeeSchedule) Calculator {
	c, err := NewCalculator(s, fixedClock)
	if err != nil {
		panic(err)
	}
	return c
}
