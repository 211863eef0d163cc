package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesops/internal/scoring/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LatestRating(ctx context.Context, db *gorm.DB, customerSeq int64) (*domain.Rating, error) {
	var ratings []domain.Rating
	err := db.WithContext(ctx).
		Where("customer_seq = ?", customerSeq).
		Order("rating_date desc").
		Limit(1).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, nil
	}
	return &ratings[0], nil
}

func (r *repo) LatestAssessment(ctx context.Context, db *gorm.DB, customerSeq int64) (*domain.Assessment, error) {
	var assessments []domain.Assessment
	err := db.WithContext(ctx).
		Where("customer_seq = ?", customerSeq).
		Order("assessment_date desc").
		Limit(1).
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return nil, nil
	}
	return &assessments[0], nil
}

func (r *repo) InsertAssessment(ctx context.Context, db *gorm.DB, assessment *domain.Assessment) error {
	return db.WithContext(ctx).Create(assessment).Error
}

func (r *repo) VolumeBetween(ctx context.Context, db *gorm.DB, customerSeq int64, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(line_amount), 0) AS total
		 FROM invoice_lines
		 WHERE customer_seq = ? AND invoice_date >= ? AND invoice_date < ?`,
		customerSeq, from, to,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *repo) ItemAggregates(ctx context.Context, db *gorm.DB, customerSeq int64, start, end time.Time) ([]domain.ItemAggregate, error) {
	var aggregates []domain.ItemAggregate
	err := db.WithContext(ctx).Raw(
		`SELECT item_seq,
		        MAX(item_name) AS item_name,
		        MAX(item_unit) AS item_unit,
		        COALESCE(SUM(line_amount), 0) AS total_amount,
		        COALESCE(SUM(qty), 0) AS total_qty
		 FROM invoice_lines
		 WHERE customer_seq = ? AND invoice_date BETWEEN ? AND ?
		 GROUP BY item_seq
		 ORDER BY item_seq`,
		customerSeq, start, end,
	).Scan(&aggregates).Error
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

func (r *repo) CustomerName(ctx context.Context, db *gorm.DB, customerSeq int64) (string, error) {
	var names []string
	err := db.WithContext(ctx).
		Table("customers").
		Where("customer_seq = ?", customerSeq).
		Limit(1).
		Pluck("customer_name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}
