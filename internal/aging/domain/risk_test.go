package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func snapshotWith(total, current, overdue float64) Snapshot {
	return Snapshot{
		CustomerSeq:  1001,
		CustomerName: "Acme Trading",
		SnapshotDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		TotalAR:      decimal.NewFromFloat(total),
		Aging0_30:    decimal.NewFromFloat(current),
		Aging31_60:   decimal.NewFromFloat(overdue),
	}
}

func TestClassify(t *testing.T) {
	thresholds := DefaultThresholds()

	t.Run("no overdue is low risk", func(t *testing.T) {
		profile := Classify(snapshotWith(1000, 1000, 0), thresholds)

		assert.Equal(t, RiskLow, profile.RiskLevel)
		assert.True(t, profile.OverdueRatio.IsZero())
		assert.True(t, profile.OverdueAR.IsZero())
	})

	t.Run("ratio above medium threshold", func(t *testing.T) {
		profile := Classify(snapshotWith(1000, 800, 200), thresholds)

		assert.Equal(t, RiskMedium, profile.RiskLevel)
		assert.Equal(t, "0.2", profile.OverdueRatio.String())
	})

	t.Run("ratio above high threshold", func(t *testing.T) {
		profile := Classify(snapshotWith(1000, 600, 400), thresholds)

		assert.Equal(t, RiskHigh, profile.RiskLevel)
		assert.Equal(t, "0.4", profile.OverdueRatio.String())
	})

	t.Run("exactly 30 percent stays medium", func(t *testing.T) {
		// The high tier requires strictly more than the threshold.
		profile := Classify(snapshotWith(1000, 700, 300), thresholds)

		assert.Equal(t, RiskMedium, profile.RiskLevel)
	})

	t.Run("exactly 10 percent stays low", func(t *testing.T) {
		profile := Classify(snapshotWith(1000, 900, 100), thresholds)

		assert.Equal(t, RiskLow, profile.RiskLevel)
	})

	t.Run("zero total yields zero ratio", func(t *testing.T) {
		profile := Classify(snapshotWith(0, 0, 0), thresholds)

		assert.Equal(t, RiskLow, profile.RiskLevel)
		assert.True(t, profile.OverdueRatio.IsZero())
	})

	t.Run("negative total yields zero ratio", func(t *testing.T) {
		profile := Classify(snapshotWith(-500, -500, 0), thresholds)

		assert.Equal(t, RiskLow, profile.RiskLevel)
		assert.True(t, profile.OverdueRatio.IsZero())
	})

	t.Run("buckets not summing to total yields zero ratio", func(t *testing.T) {
		// Malformed rows must not classify as risky on bad arithmetic.
		s := snapshotWith(1000, 100, 400)
		profile := Classify(s, thresholds)

		assert.Equal(t, RiskLow, profile.RiskLevel)
		assert.True(t, profile.OverdueRatio.IsZero())
		assert.Equal(t, "400", profile.OverdueAR.String())
	})

	t.Run("overdue spread across distant buckets", func(t *testing.T) {
		s := Snapshot{
			CustomerSeq:  1002,
			SnapshotDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			TotalAR:      decimal.NewFromInt(900),
			Aging0_30:    decimal.NewFromInt(300),
			Aging61_90:   decimal.NewFromInt(200),
			Aging181_210: decimal.NewFromInt(100),
			AgingOver365: decimal.NewFromInt(300),
		}
		profile := Classify(s, thresholds)

		assert.Equal(t, RiskHigh, profile.RiskLevel)
		assert.Equal(t, "600", profile.OverdueAR.String())
		assert.Equal(t, "0.6667", profile.OverdueRatio.String())
	})

	t.Run("ratio rounds to four decimals", func(t *testing.T) {
		profile := Classify(snapshotWith(3000, 2000, 1000), thresholds)

		assert.Equal(t, "0.3333", profile.OverdueRatio.String())
		assert.Equal(t, RiskHigh, profile.RiskLevel)
	})

	t.Run("custom thresholds are honored", func(t *testing.T) {
		tight := Thresholds{
			High:   decimal.NewFromFloat(0.15),
			Medium: decimal.NewFromFloat(0.05),
		}
		profile := Classify(snapshotWith(1000, 800, 200), tight)

		assert.Equal(t, RiskHigh, profile.RiskLevel)
	})
}
