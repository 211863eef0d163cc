package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Snapshot is one immutable AR-aging fact row per (customer, snapshot date).
// The thirteen buckets are contiguous and non-overlapping; their sum is
// expected to equal TotalAR. Rows are produced by an external load process
// and never mutated here.
type Snapshot struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerSeq  int64           `gorm:"column:customer_seq;not null;index:ix_ar_aging_customer_date" json:"customer_seq"`
	CustomerName string          `gorm:"column:customer_name" json:"customer_name"`
	SnapshotDate time.Time       `gorm:"column:snapshot_date;not null;index:ix_ar_aging_customer_date" json:"snapshot_date"`
	TotalAR      decimal.Decimal `gorm:"column:total_ar;type:decimal(20,4);not null" json:"total_ar"`
	Aging0_30    decimal.Decimal `gorm:"column:aging_0_30;type:decimal(20,4);not null" json:"aging_0_30"`
	Aging31_60   decimal.Decimal `gorm:"column:aging_31_60;type:decimal(20,4);not null" json:"aging_31_60"`
	Aging61_90   decimal.Decimal `gorm:"column:aging_61_90;type:decimal(20,4);not null" json:"aging_61_90"`
	Aging91_120  decimal.Decimal `gorm:"column:aging_91_120;type:decimal(20,4);not null" json:"aging_91_120"`
	Aging121_150 decimal.Decimal `gorm:"column:aging_121_150;type:decimal(20,4);not null" json:"aging_121_150"`
	Aging151_180 decimal.Decimal `gorm:"column:aging_151_180;type:decimal(20,4);not null" json:"aging_151_180"`
	Aging181_210 decimal.Decimal `gorm:"column:aging_181_210;type:decimal(20,4);not null" json:"aging_181_210"`
	Aging211_240 decimal.Decimal `gorm:"column:aging_211_240;type:decimal(20,4);not null" json:"aging_211_240"`
	Aging241_270 decimal.Decimal `gorm:"column:aging_241_270;type:decimal(20,4);not null" json:"aging_241_270"`
	Aging271_300 decimal.Decimal `gorm:"column:aging_271_300;type:decimal(20,4);not null" json:"aging_271_300"`
	Aging301_330 decimal.Decimal `gorm:"column:aging_301_330;type:decimal(20,4);not null" json:"aging_301_330"`
	Aging331_365 decimal.Decimal `gorm:"column:aging_331_365;type:decimal(20,4);not null" json:"aging_331_365"`
	AgingOver365 decimal.Decimal `gorm:"column:aging_over_365;type:decimal(20,4);not null" json:"aging_over_365"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Snapshot) TableName() string {
	return "ar_aging_snapshots"
}

// Buckets returns the thirteen aging buckets in ascending day order.
func (s Snapshot) Buckets() []decimal.Decimal {
	return []decimal.Decimal{
		s.Aging0_30,
		s.Aging31_60,
		s.Aging61_90,
		s.Aging91_120,
		s.Aging121_150,
		s.Aging151_180,
		s.Aging181_210,
		s.Aging211_240,
		s.Aging241_270,
		s.Aging271_300,
		s.Aging301_330,
		s.Aging331_365,
		s.AgingOver365,
	}
}

// Summary aggregates a snapshot date across all customers.
type Summary struct {
	SnapshotDate  time.Time       `json:"snapshot_date"`
	CustomerCount int64           `json:"customer_count"`
	TotalAR       decimal.Decimal `json:"total_ar"`
	Overdue30     decimal.Decimal `json:"overdue_30"`
	Overdue60     decimal.Decimal `json:"overdue_60"`
	Overdue90     decimal.Decimal `json:"overdue_90"`
	OverdueOver90 decimal.Decimal `json:"overdue_over_90"`
}
