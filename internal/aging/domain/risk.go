package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Thresholds are the overdue-ratio cut points for discrete tiering. They are
// independent from the aging-score curve in the scoring package: tuning one
// must not move the other.
type Thresholds struct {
	High   decimal.Decimal
	Medium decimal.Decimal
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		High:   decimal.NewFromFloat(0.30),
		Medium: decimal.NewFromFloat(0.10),
	}
}

// RiskProfile is the classifier output for one snapshot.
type RiskProfile struct {
	CustomerSeq  int64           `json:"customer_seq"`
	CustomerName string          `json:"customer_name,omitempty"`
	SnapshotID   snowflake.ID    `json:"snapshot_id,omitempty"`
	SnapshotDate time.Time       `json:"snapshot_date,omitempty"`
	TotalAR      decimal.Decimal `json:"total_ar"`
	OverdueAR    decimal.Decimal `json:"overdue_ar"`
	OverdueRatio decimal.Decimal `json:"overdue_ratio"`
	RiskLevel    RiskLevel       `json:"risk_level"`
}

// Classify derives overdue amount, overdue ratio and risk tier from one
// snapshot. Overdue is everything beyond the 0-30 bucket. The ratio is 0
// when the snapshot carries no receivables, and also when the buckets do
// not add up to the stated total (a malformed row must not classify as
// risky on bad arithmetic).
func Classify(s Snapshot, t Thresholds) RiskProfile {
	profile := RiskProfile{
		CustomerSeq:  s.CustomerSeq,
		CustomerName: s.CustomerName,
		SnapshotID:   s.ID,
		SnapshotDate: s.SnapshotDate,
		TotalAR:      s.TotalAR,
		OverdueAR:    decimal.Zero,
		OverdueRatio: decimal.Zero,
		RiskLevel:    RiskLow,
	}

	buckets := s.Buckets()
	overdue := decimal.Zero
	for _, b := range buckets[1:] {
		overdue = overdue.Add(b)
	}
	profile.OverdueAR = overdue

	if s.TotalAR.Sign() <= 0 {
		return profile
	}
	if !decimal.Sum(buckets[0], buckets[1:]...).Equal(s.TotalAR) {
		return profile
	}

	profile.OverdueRatio = overdue.DivRound(s.TotalAR, 4)
	switch {
	case profile.OverdueRatio.GreaterThan(t.High):
		profile.RiskLevel = RiskHigh
	case profile.OverdueRatio.GreaterThan(t.Medium):
		profile.RiskLevel = RiskMedium
	default:
		profile.RiskLevel = RiskLow
	}

	return profile
}
