package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVolumeGrowthPct(t *testing.T) {
	t.Run("positive growth", func(t *testing.T) {
		growth := VolumeGrowthPct(decimal.NewFromInt(1150), decimal.NewFromInt(1000))
		assert.Equal(t, "15", growth.String())
	})

	t.Run("decline", func(t *testing.T) {
		growth := VolumeGrowthPct(decimal.NewFromInt(900), decimal.NewFromInt(1000))
		assert.Equal(t, "-10", growth.String())
	})

	t.Run("no prior volume yields zero", func(t *testing.T) {
		growth := VolumeGrowthPct(decimal.NewFromInt(500), decimal.Zero)
		assert.True(t, growth.IsZero())
	})

	t.Run("ratio rounds to four decimals before scaling", func(t *testing.T) {
		growth := VolumeGrowthPct(decimal.NewFromInt(1000), decimal.NewFromInt(3000))
		assert.Equal(t, "-66.67", growth.String())
	})
}

func TestVolumeGrowthScore(t *testing.T) {
	cases := []struct {
		name   string
		growth float64
		want   int
	}{
		{"saturates high at +10", 15, 100},
		{"exactly +10", 10, 100},
		{"flat is neutral", 0, 50},
		{"exactly -10", -10, 0},
		{"saturates low below -10", -25, 0},
		{"mid positive", 4, 70},
		{"mid negative", -6, 20},
		{"fraction truncates", 3.1, 65},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VolumeGrowthScore(decimal.NewFromFloat(tc.growth)))
		})
	}
}

func TestAgingScore(t *testing.T) {
	zero := DefaultAgingZeroPct

	t.Run("clean ledger scores 100", func(t *testing.T) {
		assert.Equal(t, 100, AgingScore(decimal.Zero, zero))
	})

	t.Run("linear in between", func(t *testing.T) {
		assert.Equal(t, 60, AgingScore(decimal.NewFromInt(20), zero))
	})

	t.Run("at the zero point scores 0", func(t *testing.T) {
		assert.Equal(t, 0, AgingScore(decimal.NewFromInt(50), zero))
	})

	t.Run("beyond the zero point scores 0", func(t *testing.T) {
		assert.Equal(t, 0, AgingScore(decimal.NewFromInt(80), zero))
	})

	t.Run("custom zero point", func(t *testing.T) {
		assert.Equal(t, 0, AgingScore(decimal.NewFromInt(30), decimal.NewFromInt(30)))
		assert.Equal(t, 60, AgingScore(decimal.NewFromInt(20), decimal.NewFromInt(30)))
	})

	t.Run("non-positive zero point falls back to default", func(t *testing.T) {
		assert.Equal(t, 60, AgingScore(decimal.NewFromInt(20), decimal.Zero))
	})
}

func TestCompositeScore(t *testing.T) {
	t.Run("all neutral", func(t *testing.T) {
		s := SubScores{Volume: 50, Aging: 50, Rating: 50, Assessment: 50}
		assert.Equal(t, 50, CompositeScore(s))
	})

	t.Run("average truncates, never rounds", func(t *testing.T) {
		s := SubScores{Volume: 51, Aging: 50, Rating: 50, Assessment: 50}
		assert.Equal(t, 50, CompositeScore(s))

		s = SubScores{Volume: 53, Aging: 50, Rating: 50, Assessment: 50}
		assert.Equal(t, 50, CompositeScore(s))
	})

	t.Run("extremes", func(t *testing.T) {
		assert.Equal(t, 0, CompositeScore(SubScores{}))
		assert.Equal(t, 100, CompositeScore(SubScores{Volume: 100, Aging: 100, Rating: 100, Assessment: 100}))
	})
}

func TestSuggestedIncreaseRate(t *testing.T) {
	max := DefaultMaxIncreasePct

	t.Run("neutral composite suggests half the cap", func(t *testing.T) {
		rate := SuggestedIncreaseRate(50, max)
		assert.Equal(t, "5", rate.String())
	})

	t.Run("perfect composite suggests zero", func(t *testing.T) {
		rate := SuggestedIncreaseRate(100, max)
		assert.True(t, rate.IsZero())
	})

	t.Run("zero composite suggests the cap", func(t *testing.T) {
		rate := SuggestedIncreaseRate(0, max)
		assert.Equal(t, "10", rate.String())
	})

	t.Run("factor rounds to two decimals before subtraction", func(t *testing.T) {
		rate := SuggestedIncreaseRate(67, max)
		assert.Equal(t, "3.3", rate.String())
	})

	t.Run("higher composite never suggests a higher rate", func(t *testing.T) {
		prev := SuggestedIncreaseRate(0, max)
		for composite := 1; composite <= 100; composite++ {
			rate := SuggestedIncreaseRate(composite, max)
			assert.True(t, rate.LessThanOrEqual(prev), "composite %d", composite)
			prev = rate
		}
	})

	t.Run("non-positive cap falls back to default", func(t *testing.T) {
		rate := SuggestedIncreaseRate(50, decimal.Zero)
		assert.Equal(t, "5", rate.String())
	})
}

func TestSimulatePrice(t *testing.T) {
	t.Run("applies rate in percent", func(t *testing.T) {
		price := SimulatePrice(decimal.NewFromInt(200), decimal.NewFromInt(5))
		assert.Equal(t, "210", price.String())
	})

	t.Run("zero rate keeps the price", func(t *testing.T) {
		price := SimulatePrice(decimal.NewFromFloat(123.45), decimal.Zero)
		assert.Equal(t, "123.45", price.String())
	})
}

func TestAverageUnitPrice(t *testing.T) {
	t.Run("divides amount by quantity", func(t *testing.T) {
		avg := AverageUnitPrice(decimal.NewFromInt(1500), decimal.NewFromInt(4))
		assert.Equal(t, "375", avg.String())
	})

	t.Run("zero quantity guards the division", func(t *testing.T) {
		avg := AverageUnitPrice(decimal.NewFromInt(1500), decimal.Zero)
		assert.True(t, avg.IsZero())
	})
}
