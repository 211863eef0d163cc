package domain

import "github.com/shopspring/decimal"

const (
	// NeutralScore substitutes for a missing rating or assessment so a
	// composite can always be produced, even from an empty profile.
	NeutralScore = 50

	// MaxScore bounds every sub-score and the composite.
	MaxScore = 100
)

var (
	// DefaultMaxIncreasePct caps the suggested price uplift.
	DefaultMaxIncreasePct = decimal.NewFromInt(10)

	// DefaultAgingZeroPct is the overdue percentage at which the aging
	// score bottoms out. Independent from the 30% tiering threshold in the
	// aging package; the two must stay separately tunable.
	DefaultAgingZeroPct = decimal.NewFromInt(50)

	growthFloor = decimal.NewFromInt(-10)
	growthCeil  = decimal.NewFromInt(10)
	hundred     = decimal.NewFromInt(100)
)

// VolumeGrowthPct computes year-over-year growth in percent. Zero when the
// prior year had no volume.
func VolumeGrowthPct(current, prior decimal.Decimal) decimal.Decimal {
	if prior.Sign() <= 0 {
		return decimal.Zero
	}
	return current.Sub(prior).DivRound(prior, 4).Mul(hundred)
}

// VolumeGrowthScore maps growth in [-10%, +10%] linearly onto [0, 100],
// saturating outside that band.
func VolumeGrowthScore(growthPct decimal.Decimal) int {
	switch {
	case growthPct.GreaterThanOrEqual(growthCeil):
		return MaxScore
	case growthPct.LessThanOrEqual(growthFloor):
		return 0
	default:
		return int(growthPct.Add(growthCeil).Mul(decimal.NewFromInt(5)).IntPart())
	}
}

// AgingScore maps the overdue percentage onto [0, 100]: a clean ledger
// scores 100, anything at or beyond zeroPct scores 0, linear in between.
func AgingScore(overduePct, zeroPct decimal.Decimal) int {
	if zeroPct.Sign() <= 0 {
		zeroPct = DefaultAgingZeroPct
	}
	if overduePct.GreaterThanOrEqual(zeroPct) {
		return 0
	}
	score := int(hundred.Sub(overduePct.Mul(decimal.NewFromInt(2))).IntPart())
	return clampScore(score)
}

// CompositeScore is the integer-truncated average of the four sub-scores.
// Truncation, not rounding, is the contract: it keeps the composite
// reproducible across implementations.
func CompositeScore(s SubScores) int {
	return (s.Volume + s.Aging + s.Rating + s.Assessment) / 4
}

// SuggestedIncreaseRate derives the price uplift from the composite:
// maxIncrease × (1 − composite/100), with the score factor rounded to two
// decimals before the subtraction.
func SuggestedIncreaseRate(composite int, maxIncrease decimal.Decimal) decimal.Decimal {
	if maxIncrease.Sign() <= 0 {
		maxIncrease = DefaultMaxIncreasePct
	}
	factor := decimal.NewFromInt(int64(composite)).DivRound(hundred, 2)
	return maxIncrease.Mul(decimal.NewFromInt(1).Sub(factor))
}

// SimulatePrice applies the suggested rate (in percent) to a unit price.
func SimulatePrice(recentUnitPrice, ratePct decimal.Decimal) decimal.Decimal {
	rate := ratePct.DivRound(hundred, 4)
	return recentUnitPrice.Mul(decimal.NewFromInt(1).Add(rate))
}

// AverageUnitPrice guards the zero-quantity division.
func AverageUnitPrice(totalAmount, totalQty decimal.Decimal) decimal.Decimal {
	if totalQty.Sign() == 0 {
		return decimal.Zero
	}
	return totalAmount.DivRound(totalQty, 4)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
