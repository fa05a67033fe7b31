package loyalty

import (
	"github.com/shopspring/decimal"
)

type tierRule struct {
	tier       Tier
	threshold  int64
	multiplier decimal.Decimal
}

// Ordered by ascending threshold.
var tierRules = []tierRule{
	{TierBronze, 0, decimal.NewFromInt(1)},
	{TierSilver, 500, decimal.RequireFromString("1.25")},
	{TierGold, 1500, decimal.RequireFromString("1.5")},
	{TierPlatinum, 3000, decimal.NewFromInt(2)},
}

// CalculateTier returns the highest tier whose threshold totalEarned meets.
func CalculateTier(totalEarned int64) Tier {
	tier := TierBronze
	for _, r := range tierRules {
		if totalEarned >= r.threshold {
			tier = r.tier
		}
	}
	return tier
}

func Multiplier(tier Tier) decimal.Decimal {
	for _, r := range tierRules {
		if r.tier == tier {
			return r.multiplier
		}
	}
	return decimal.NewFromInt(1)
}

func tierRank(tier Tier) int {
	for i, r := range tierRules {
		if r.tier == tier {
			return i
		}
	}
	return 0
}

// maxTier never lets an account move down.
func maxTier(a, b Tier) Tier {
	if tierRank(b) > tierRank(a) {
		return b
	}
	return a
}

type Progress struct {
	Current      Tier  `json:"current"`
	Next         *Tier `json:"next,omitempty"`
	PointsToNext int64 `json:"points_to_next"`
}

// NextTier reports how far totalEarned is from the next threshold. Next is
// nil at the top tier.
func NextTier(totalEarned int64) Progress {
	p := Progress{Current: CalculateTier(totalEarned)}
	for _, r := range tierRules {
		if r.threshold > totalEarned {
			next := r.tier
			p.Next = &next
			p.PointsToNext = r.threshold - totalEarned
			break
		}
	}
	return p
}

// PointsForPurchase is floor(floor(subtotal) * multiplier(tier)).
func PointsForPurchase(subtotal decimal.Decimal, tier Tier) int64 {
	if !subtotal.IsPositive() {
		return 0
	}
	return subtotal.Floor().Mul(Multiplier(tier)).Floor().IntPart()
}
