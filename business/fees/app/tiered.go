package app

import (
	"fmt"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
)

// TieredCalculator prices perpetuals venues from trailing volume and
// staking discounts.
type TieredCalculator struct {
	baseCalculator
}

func (c *TieredCalculator) Estimate(req domain.TradeRequest) *domain.FeeEstimate {
	if reason := c.checkInput(req); reason != "" {
		return c.degenerate(req, reason)
	}

	sched := c.schedule.Tiered
	orderType := req.EffectiveOrderType()
	confidence := domain.ConfidenceHigh
	var assumptions []string

	volume, staked := zero, zero
	if req.User != nil {
		volume, staked = req.User.TrailingVolumeUSD, req.User.StakedBalance
	} else {
		confidence = domain.ConfidenceMedium
		assumptions = append(assumptions, fmt.Sprintf("No user context supplied; %d-day volume assumed $0 (base tier), no staking discount", sched.VolumeWindowDays))
	}

	idx := domain.SelectVolumeTier(sched.VolumeTiers, volume)
	tier := sched.VolumeTiers[idx]
	base := tier.TakerBps
	if orderType.IsMaker() {
		base = tier.MakerBps
	}
	assumptions = append(assumptions, fmt.Sprintf("Volume tier %d (>= $%s): %s rate %s bps", idx, tier.MinVolumeUSD, orderLabel(orderType), base))

	discount, sidx := domain.SelectStakingDiscount(sched.StakingTiers, staked)
	if sidx >= 0 {
		assumptions = append(assumptions, fmt.Sprintf("Staking %s %s: %s%% discount", staked, sched.StakingAsset, discount))
	}

	rate := domain.EffectiveRateBps(base, discount)
	breakdown := zeroBreakdown()
	breakdown.ExchangeFee = domain.Bps(req.SizeUSD, rate)
	breakdown.GasFee = sched.GasUSD
	return c.finish(req, breakdown, confidence, assumptions)
}
