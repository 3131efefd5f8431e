package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

// scheduleFile mirrors one TOML schedule file. Rates are decoded as floats
// and converted with decimal.NewFromFloat, which keeps the shortest
// representation (0.07 stays 0.07).
type scheduleFile struct {
	Venue         string    `toml:"venue"`
	Category      string    `toml:"category"`
	Model         string    `toml:"model"`
	Version       string    `toml:"version"`
	EffectiveDate time.Time `toml:"effective_date"`
	Source        string    `toml:"source"`
	Disclaimer    string    `toml:"disclaimer"`

	Heuristics struct {
		TypicalSpreadPct float64 `toml:"typical_spread_pct"`
		BaseSlippagePct  float64 `toml:"base_slippage_pct"`
	} `toml:"heuristics"`

	Probability *probabilitySection `toml:"probability"`
	Flat        *flatSection        `toml:"flat"`
	Tiered      *tieredSection      `toml:"tiered"`
	Pool        *poolSection        `toml:"pool"`
}

type probabilitySection struct {
	TakerCoefficient float64  `toml:"taker_coefficient"`
	MakerCoefficient float64  `toml:"maker_coefficient"`
	MakerFeeSeries   []string `toml:"maker_fee_series"`
}

type flatSection struct {
	TakerBps              float64  `toml:"taker_bps"`
	MakerBps              float64  `toml:"maker_bps"`
	ShortDurationTakerBps float64  `toml:"short_duration_taker_bps"`
	ShortDurationMakerBps float64  `toml:"short_duration_maker_bps"`
	ShortDurationMarkers  []string `toml:"short_duration_markers"`
	MinFeeUSD             float64  `toml:"min_fee_usd"`
	GasUSD                float64  `toml:"gas_usd"`
}

type tieredSection struct {
	VolumeWindowDays int     `toml:"volume_window_days"`
	StakingAsset     string  `toml:"staking_asset"`
	GasUSD           float64 `toml:"gas_usd"`
	VolumeTiers      []struct {
		MinVolumeUSD float64 `toml:"min_volume_usd"`
		TakerBps     float64 `toml:"taker_bps"`
		MakerBps     float64 `toml:"maker_bps"`
	} `toml:"volume_tiers"`
	StakingTiers []struct {
		MinStaked   float64 `toml:"min_staked"`
		DiscountPct float64 `toml:"discount_pct"`
	} `toml:"staking_tiers"`
}

type poolSection struct {
	VolatileBps  float64 `toml:"volatile_bps"`
	StableBps    float64 `toml:"stable_bps"`
	GasUSD       float64 `toml:"gas_usd"`
	TickSpacings []struct {
		TickSpacing int     `toml:"tick_spacing"`
		FeeBps      float64 `toml:"fee_bps"`
	} `toml:"tick_spacings"`
	KnownPools []struct {
		Address     string `toml:"address"`
		Name        string `toml:"name"`
		Type        string `toml:"type"`
		TickSpacing int    `toml:"tick_spacing"`
	} `toml:"known_pools"`
}

// Parse decodes and validates one schedule file. Unknown keys are rejected
// so a typo cannot silently zero a rate.
func Parse(name string, data []byte) (domain.FeeSchedule, error) {
	var f scheduleFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return domain.FeeSchedule{}, fmt.Errorf("%s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return domain.FeeSchedule{}, fmt.Errorf("%s: unknown keys %s", name, strings.Join(keys, ", "))
	}

	s, err := f.toDomain()
	if err != nil {
		return domain.FeeSchedule{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := s.Validate(); err != nil {
		return domain.FeeSchedule{}, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func (f *scheduleFile) toDomain() (domain.FeeSchedule, error) {
	s := domain.FeeSchedule{
		Venue:         domain.ParseVenue(f.Venue),
		Category:      domain.Category(f.Category),
		Model:         domain.FeeModel(strings.ToUpper(f.Model)),
		Version:       f.Version,
		EffectiveDate: f.EffectiveDate,
		Source:        f.Source,
		Disclaimer:    f.Disclaimer,
		Heuristics: domain.Heuristics{
			TypicalSpreadPct: dec(f.Heuristics.TypicalSpreadPct),
			BaseSlippagePct:  dec(f.Heuristics.BaseSlippagePct),
		},
	}

	if p := f.Probability; p != nil {
		s.Probability = &domain.ProbabilitySchedule{
			TakerCoefficient: dec(p.TakerCoefficient),
			MakerCoefficient: dec(p.MakerCoefficient),
			MakerFeeSeries:   p.MakerFeeSeries,
		}
	}

	if fl := f.Flat; fl != nil {
		s.Flat = &domain.FlatSchedule{
			TakerBps:              dec(fl.TakerBps),
			MakerBps:              dec(fl.MakerBps),
			ShortDurationTakerBps: dec(fl.ShortDurationTakerBps),
			ShortDurationMakerBps: dec(fl.ShortDurationMakerBps),
			ShortDurationMarkers:  fl.ShortDurationMarkers,
			MinFeeUSD:             dec(fl.MinFeeUSD),
			GasUSD:                dec(fl.GasUSD),
		}
	}

	if t := f.Tiered; t != nil {
		tiered := &domain.TieredSchedule{
			VolumeWindowDays: t.VolumeWindowDays,
			StakingAsset:     t.StakingAsset,
			GasUSD:           dec(t.GasUSD),
		}
		for _, v := range t.VolumeTiers {
			tiered.VolumeTiers = append(tiered.VolumeTiers, domain.VolumeTier{
				MinVolumeUSD: dec(v.MinVolumeUSD),
				TakerBps:     dec(v.TakerBps),
				MakerBps:     dec(v.MakerBps),
			})
		}
		for _, st := range t.StakingTiers {
			tiered.StakingTiers = append(tiered.StakingTiers, domain.StakingTier{
				MinStaked:   dec(st.MinStaked),
				DiscountPct: dec(st.DiscountPct),
			})
		}
		s.Tiered = tiered
	}

	if p := f.Pool; p != nil {
		pool := &domain.PoolSchedule{
			VolatileBps: dec(p.VolatileBps),
			StableBps:   dec(p.StableBps),
			GasUSD:      dec(p.GasUSD),
		}
		for _, ts := range p.TickSpacings {
			pool.TickSpacings = append(pool.TickSpacings, domain.TickSpacingFee{
				TickSpacing: ts.TickSpacing,
				FeeBps:      dec(ts.FeeBps),
			})
		}
		for _, kp := range p.KnownPools {
			if !common.IsHexAddress(kp.Address) {
				return domain.FeeSchedule{}, fmt.Errorf("known pool %q: invalid address %q", kp.Name, kp.Address)
			}
			pool.KnownPools = append(pool.KnownPools, domain.KnownPool{
				Address:     common.HexToAddress(kp.Address),
				Name:        kp.Name,
				Type:        domain.PoolType(strings.ToLower(kp.Type)),
				TickSpacing: kp.TickSpacing,
			})
		}
		s.Pool = pool
	}

	return s, nil
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
