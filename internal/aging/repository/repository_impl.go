package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesops/internal/aging/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LatestByCustomer(ctx context.Context, db *gorm.DB, customerSeq int64) (*domain.Snapshot, error) {
	var snapshots []domain.Snapshot
	err := db.WithContext(ctx).
		Where("customer_seq = ?", customerSeq).
		Order("snapshot_date desc").
		Limit(1).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

func (r *repo) ByCustomerAndDate(ctx context.Context, db *gorm.DB, customerSeq int64, date time.Time) (*domain.Snapshot, error) {
	var snapshots []domain.Snapshot
	err := db.WithContext(ctx).
		Where("customer_seq = ? AND snapshot_date = ?", customerSeq, date).
		Limit(1).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

func (r *repo) LatestDate(ctx context.Context, db *gorm.DB) (*time.Time, error) {
	var dates []time.Time
	err := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Order("snapshot_date desc").
		Limit(1).
		Pluck("snapshot_date", &dates).Error
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	return &dates[0], nil
}

func (r *repo) ListByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]*domain.Snapshot, error) {
	var snapshots []*domain.Snapshot
	err := db.WithContext(ctx).
		Where("snapshot_date = ?", date).
		Order("customer_seq asc").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) DistinctDates(ctx context.Context, db *gorm.DB) ([]time.Time, error) {
	var dates []time.Time
	err := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Distinct("snapshot_date").
		Order("snapshot_date desc").
		Pluck("snapshot_date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

type summaryRow struct {
	CustomerCount int64           `gorm:"column:customer_count"`
	TotalAR       decimal.Decimal `gorm:"column:total_ar"`
	Overdue30     decimal.Decimal `gorm:"column:overdue30"`
	Overdue60     decimal.Decimal `gorm:"column:overdue60"`
	Overdue90     decimal.Decimal `gorm:"column:overdue90"`
	OverdueOver90 decimal.Decimal `gorm:"column:overdue_over90"`
}

func (r *repo) SummaryByDate(ctx context.Context, db *gorm.DB, date time.Time) (*domain.Summary, error) {
	var row summaryRow
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS customer_count,
		        COALESCE(SUM(total_ar), 0) AS total_ar,
		        COALESCE(SUM(aging_31_60), 0) AS overdue30,
		        COALESCE(SUM(aging_61_90), 0) AS overdue60,
		        COALESCE(SUM(aging_91_120), 0) AS overdue90,
		        COALESCE(SUM(aging_121_150 + aging_151_180 + aging_181_210 + aging_211_240 +
		                     aging_241_270 + aging_271_300 + aging_301_330 + aging_331_365 +
		                     aging_over_365), 0) AS overdue_over90
		 FROM ar_aging_snapshots WHERE snapshot_date = ?`,
		date,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &domain.Summary{
		SnapshotDate:  date,
		CustomerCount: row.CustomerCount,
		TotalAR:       row.TotalAR,
		Overdue30:     row.Overdue30,
		Overdue60:     row.Overdue60,
		Overdue90:     row.Overdue90,
		OverdueOver90: row.OverdueOver90,
	}, nil
}
