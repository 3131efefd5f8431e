package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// FeeModel tags which fee formula a schedule feeds.
type FeeModel string

const (
	ModelProbabilityScaled FeeModel = "PROBABILITY_SCALED"
	ModelFlat              FeeModel = "FLAT"
	ModelVolumeTiered      FeeModel = "VOLUME_TIERED"
	ModelPool              FeeModel = "POOL"
)

// FeeSchedule is a versioned, static per-venue fee record. Exactly one
// model section is set, matching Model.
type FeeSchedule struct {
	Venue         Venue      `json:"venue"`
	Category      Category   `json:"category"`
	Model         FeeModel   `json:"model"`
	Version       string     `json:"version"`
	EffectiveDate time.Time  `json:"effective_date"`
	Source        string     `json:"source"`
	Disclaimer    string     `json:"disclaimer"`
	Heuristics    Heuristics `json:"heuristics"`

	Probability *ProbabilitySchedule `json:"probability,omitempty"`
	Flat        *FlatSchedule        `json:"flat,omitempty"`
	Tiered      *TieredSchedule      `json:"tiered,omitempty"`
	Pool        *PoolSchedule        `json:"pool,omitempty"`
}

// Heuristics are the fallback constants used when no live book is available.
type Heuristics struct {
	TypicalSpreadPct decimal.Decimal `json:"typical_spread_pct"`
	BaseSlippagePct  decimal.Decimal `json:"base_slippage_pct"`
}

// ProbabilitySchedule feeds fee = coefficient * contracts * P * (1-P).
type ProbabilitySchedule struct {
	TakerCoefficient decimal.Decimal `json:"taker_coefficient"`
	MakerCoefficient decimal.Decimal `json:"maker_coefficient"`
	// Maker fees apply only to markets whose id starts with one of these.
	MakerFeeSeries []string `json:"maker_fee_series"`
}

// MakerCoefficientFor returns the maker coefficient, or zero for markets
// outside the maker-fee series.
func (p ProbabilitySchedule) MakerCoefficientFor(marketID string) (decimal.Decimal, bool) {
	id := strings.ToUpper(marketID)
	for _, series := range p.MakerFeeSeries {
		if series != "" && strings.HasPrefix(id, strings.ToUpper(series)) {
			return p.MakerCoefficient, true
		}
	}
	return decimal.Zero, false
}

// FlatSchedule feeds fee = max(size * bps / 10000, min) + gas.
type FlatSchedule struct {
	TakerBps              decimal.Decimal `json:"taker_bps"`
	MakerBps              decimal.Decimal `json:"maker_bps"`
	ShortDurationTakerBps decimal.Decimal `json:"short_duration_taker_bps"`
	ShortDurationMakerBps decimal.Decimal `json:"short_duration_maker_bps"`
	ShortDurationMarkers  []string        `json:"short_duration_markers"`
	MinFeeUSD             decimal.Decimal `json:"min_fee_usd"`
	GasUSD                decimal.Decimal `json:"gas_usd"`
}

// IsShortDuration reports whether marketID names a short-duration contract.
func (f FlatSchedule) IsShortDuration(marketID string) bool {
	id := strings.ToLower(marketID)
	for _, marker := range f.ShortDurationMarkers {
		if marker != "" && strings.Contains(id, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// RateBps selects the rate for the order type and market subtype.
func (f FlatSchedule) RateBps(orderType OrderType, marketID string) (decimal.Decimal, bool) {
	short := f.IsShortDuration(marketID)
	switch {
	case short && orderType.IsMaker():
		return f.ShortDurationMakerBps, true
	case short:
		return f.ShortDurationTakerBps, true
	case orderType.IsMaker():
		return f.MakerBps, false
	default:
		return f.TakerBps, false
	}
}

// VolumeTier is a fee bracket keyed by trailing volume.
type VolumeTier struct {
	MinVolumeUSD decimal.Decimal `json:"min_volume_usd"`
	TakerBps     decimal.Decimal `json:"taker_bps"`
	MakerBps     decimal.Decimal `json:"maker_bps"`
}

// StakingTier is a discount bracket keyed by staked balance.
type StakingTier struct {
	MinStaked   decimal.Decimal `json:"min_staked"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// TieredSchedule feeds the volume-tiered model. Tiers are ascending.
type TieredSchedule struct {
	VolumeWindowDays int             `json:"volume_window_days"`
	StakingAsset     string          `json:"staking_asset"`
	VolumeTiers      []VolumeTier    `json:"volume_tiers"`
	StakingTiers     []StakingTier   `json:"staking_tiers"`
	GasUSD           decimal.Decimal `json:"gas_usd"`
}

// TickSpacingFee maps a concentrated-pool tick spacing to its fee.
type TickSpacingFee struct {
	TickSpacing int             `json:"tick_spacing"`
	FeeBps      decimal.Decimal `json:"fee_bps"`
}

// KnownPool is a published pool whose parameters are fixed.
type KnownPool struct {
	Address     common.Address `json:"address"`
	Name        string         `json:"name"`
	Type        PoolType       `json:"type"`
	TickSpacing int            `json:"tick_spacing,omitempty"`
}

// PoolSchedule feeds the pool-based model.
type PoolSchedule struct {
	VolatileBps  decimal.Decimal  `json:"volatile_bps"`
	StableBps    decimal.Decimal  `json:"stable_bps"`
	TickSpacings []TickSpacingFee `json:"tick_spacings"`
	KnownPools   []KnownPool      `json:"known_pools"`
	GasUSD       decimal.Decimal  `json:"gas_usd"`
}

// RateBps returns the fee for a pool. The bool is false when the pool could
// not be resolved and the volatile rate was substituted.
func (p PoolSchedule) RateBps(poolType PoolType, tickSpacing int) (decimal.Decimal, bool) {
	switch poolType {
	case PoolVolatile:
		return p.VolatileBps, true
	case PoolStable:
		return p.StableBps, true
	case PoolConcentrated:
		for _, ts := range p.TickSpacings {
			if ts.TickSpacing == tickSpacing {
				return ts.FeeBps, true
			}
		}
	}
	return p.VolatileBps, false
}

// FindPool looks up a known pool by hex address, ignoring checksum case.
func (p PoolSchedule) FindPool(id string) (KnownPool, bool) {
	if !common.IsHexAddress(id) {
		return KnownPool{}, false
	}
	addr := common.HexToAddress(id)
	for _, pool := range p.KnownPools {
		if pool.Address == addr {
			return pool, true
		}
	}
	return KnownPool{}, false
}

// ModeDisclaimer is appended to every estimate built from this schedule.
func (s *FeeSchedule) ModeDisclaimer() string {
	text := fmt.Sprintf("Public fee schedule %s %s", s.Venue, s.Version)
	if s.Source != "" {
		text += " (" + s.Source + ")"
	}
	if s.Disclaimer != "" {
		text += ": " + s.Disclaimer
	}
	return text
}

// Clone returns a deep copy.
func (s FeeSchedule) Clone() FeeSchedule {
	if s.Probability != nil {
		p := *s.Probability
		p.MakerFeeSeries = slices.Clone(p.MakerFeeSeries)
		s.Probability = &p
	}
	if s.Flat != nil {
		f := *s.Flat
		f.ShortDurationMarkers = slices.Clone(f.ShortDurationMarkers)
		s.Flat = &f
	}
	if s.Tiered != nil {
		t := *s.Tiered
		t.VolumeTiers = slices.Clone(t.VolumeTiers)
		t.StakingTiers = slices.Clone(t.StakingTiers)
		s.Tiered = &t
	}
	if s.Pool != nil {
		p := *s.Pool
		p.TickSpacings = slices.Clone(p.TickSpacings)
		p.KnownPools = slices.Clone(p.KnownPools)
		s.Pool = &p
	}
	return s
}

// Validate checks internal consistency.
func (s *FeeSchedule) Validate() error {
	if s.Venue == "" {
		return errors.New("venue is required")
	}
	if s.Version == "" {
		return fmt.Errorf("%s: version is required", s.Venue)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("%s: unknown category %q", s.Venue, s.Category)
	}
	if s.Heuristics.TypicalSpreadPct.IsNegative() || s.Heuristics.BaseSlippagePct.IsNegative() {
		return fmt.Errorf("%s: heuristics must be non-negative", s.Venue)
	}

	sections := 0
	for _, set := range []bool{s.Probability != nil, s.Flat != nil, s.Tiered != nil, s.Pool != nil} {
		if set {
			sections++
		}
	}
	if sections != 1 {
		return fmt.Errorf("%s: exactly one model section required, found %d", s.Venue, sections)
	}

	switch s.Model {
	case ModelProbabilityScaled:
		if s.Probability == nil {
			return fmt.Errorf("%s: model %s requires a probability section", s.Venue, s.Model)
		}
		return nonNegative(s.Venue, s.Probability.TakerCoefficient, s.Probability.MakerCoefficient)
	case ModelFlat:
		if s.Flat == nil {
			return fmt.Errorf("%s: model %s requires a flat section", s.Venue, s.Model)
		}
		f := s.Flat
		return nonNegative(s.Venue, f.TakerBps, f.MakerBps, f.ShortDurationTakerBps, f.ShortDurationMakerBps, f.MinFeeUSD, f.GasUSD)
	case ModelVolumeTiered:
		if s.Tiered == nil {
			return fmt.Errorf("%s: model %s requires a tiered section", s.Venue, s.Model)
		}
		return s.Tiered.validate(s.Venue)
	case ModelPool:
		if s.Pool == nil {
			return fmt.Errorf("%s: model %s requires a pool section", s.Venue, s.Model)
		}
		return s.Pool.validate(s.Venue)
	default:
		return fmt.Errorf("%s: unknown model %q", s.Venue, s.Model)
	}
}

func (t *TieredSchedule) validate(venue Venue) error {
	if len(t.VolumeTiers) == 0 {
		return fmt.Errorf("%s: at least one volume tier required", venue)
	}
	if !t.VolumeTiers[0].MinVolumeUSD.IsZero() {
		return fmt.Errorf("%s: first volume tier must start at zero", venue)
	}
	for i, tier := range t.VolumeTiers {
		if err := nonNegative(venue, tier.TakerBps, tier.MakerBps); err != nil {
			return err
		}
		if i > 0 && !tier.MinVolumeUSD.GreaterThan(t.VolumeTiers[i-1].MinVolumeUSD) {
			return fmt.Errorf("%s: volume tiers must be strictly ascending", venue)
		}
	}
	for i, tier := range t.StakingTiers {
		if tier.DiscountPct.IsNegative() || tier.DiscountPct.GreaterThan(hundred) {
			return fmt.Errorf("%s: staking discount %s outside [0, 100]", venue, tier.DiscountPct)
		}
		if i > 0 && !tier.MinStaked.GreaterThan(t.StakingTiers[i-1].MinStaked) {
			return fmt.Errorf("%s: staking tiers must be strictly ascending", venue)
		}
	}
	return nonNegative(venue, t.GasUSD)
}

func (p *PoolSchedule) validate(venue Venue) error {
	if err := nonNegative(venue, p.VolatileBps, p.StableBps, p.GasUSD); err != nil {
		return err
	}
	for _, ts := range p.TickSpacings {
		if ts.TickSpacing <= 0 {
			return fmt.Errorf("%s: tick spacing must be positive", venue)
		}
		if err := nonNegative(venue, ts.FeeBps); err != nil {
			return err
		}
	}
	for _, pool := range p.KnownPools {
		if pool.Address == (common.Address{}) {
			return fmt.Errorf("%s: known pool %q has no address", venue, pool.Name)
		}
		if _, ok := p.RateBps(pool.Type, pool.TickSpacing); !ok {
			return fmt.Errorf("%s: known pool %q has no published rate", venue, pool.Name)
		}
	}
	return nil
}

func nonNegative(venue Venue, values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return fmt.Errorf("%s: rates must be non-negative, got %s", venue, v)
		}
	}
	return nil
}
