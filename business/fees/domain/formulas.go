package domain

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// ValidProbability reports whether p lies strictly inside (0, 1).
func ValidProbability(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(one)
}

// Contracts converts a quote-currency size into binary contracts at price p.
// Prices at or outside the (0, 1) bounds yield zero contracts.
func Contracts(size, p decimal.Decimal) decimal.Decimal {
	if !ValidProbability(p) {
		return decimal.Zero
	}
	return size.Div(p)
}

// ProbabilityScaledFee returns coefficient * contracts * P * (1-P). Per
// contract the curve is symmetric around 0.5, where it peaks. For a fixed
// size it reduces to coefficient * size * (1-P).
func ProbabilityScaledFee(coefficient, size, p decimal.Decimal) (contracts, fee decimal.Decimal) {
	contracts = Contracts(size, p)
	if contracts.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	fee = coefficient.Mul(contracts).Mul(p).Mul(one.Sub(p))
	return contracts, fee
}

// FlatFee returns max(size * bps / 10000, minFee).
func FlatFee(size, bps, minFee decimal.Decimal) (fee decimal.Decimal, floored bool) {
	fee = Bps(size, bps)
	if fee.LessThan(minFee) {
		return minFee, true
	}
	return fee, false
}

// SelectVolumeTier returns the index of the highest tier whose threshold
// is <= volume. Tiers must be ascending; the first tier is the fallback.
func SelectVolumeTier(tiers []VolumeTier, volume decimal.Decimal) int {
	idx := 0
	for i, tier := range tiers {
		if tier.MinVolumeUSD.LessThanOrEqual(volume) {
			idx = i
		}
	}
	return idx
}

// SelectStakingDiscount returns the discount percent of the highest staking
// tier whose threshold is <= staked, or zero when none qualifies.
func SelectStakingDiscount(tiers []StakingTier, staked decimal.Decimal) (decimal.Decimal, int) {
	discount, idx := decimal.Zero, -1
	for i, tier := range tiers {
		if tier.MinStaked.LessThanOrEqual(staked) {
			discount, idx = tier.DiscountPct, i
		}
	}
	return discount, idx
}

// EffectiveRateBps = base * (1 - discountPct/100).
func EffectiveRateBps(base, discountPct decimal.Decimal) decimal.Decimal {
	return base.Mul(one.Sub(discountPct.Div(hundred)))
}
