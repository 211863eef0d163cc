package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetSimulationRequest struct {
	CustomerSeq int64
	StartDate   time.Time
	EndDate     time.Time
}

type SubmitAssessmentRequest struct {
	CustomerSeq int64
	AssessorID  string
	Score       int
	Comment     string
}

type Service interface {
	// GetSimulation produces the four-factor composite score, the suggested
	// price-increase rate and per-item simulated prices for one customer.
	// Missing factor data degrades to neutral defaults; the call only fails
	// on infrastructure errors of the item query.
	GetSimulation(ctx context.Context, req GetSimulationRequest) (Simulation, error)
	SubmitAssessment(ctx context.Context, req SubmitAssessmentRequest) (Assessment, error)
	LatestRating(ctx context.Context, customerSeq int64) (*Rating, error)
	LatestAssessment(ctx context.Context, customerSeq int64) (*Assessment, error)
}

// ItemAggregate is one item's purchase totals within the simulation range.
type ItemAggregate struct {
	ItemSeq     int64           `gorm:"column:item_seq"`
	ItemName    string          `gorm:"column:item_name"`
	ItemUnit    string          `gorm:"column:item_unit"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount"`
	TotalQty    decimal.Decimal `gorm:"column:total_qty"`
}

type Repository interface {
	LatestRating(ctx context.Context, db *gorm.DB, customerSeq int64) (*Rating, error)
	LatestAssessment(ctx context.Context, db *gorm.DB, customerSeq int64) (*Assessment, error)
	InsertAssessment(ctx context.Context, db *gorm.DB, assessment *Assessment) error
	// VolumeBetween sums invoiced amounts for a customer in [from, to).
	VolumeBetween(ctx context.Context, db *gorm.DB, customerSeq int64, from, to time.Time) (decimal.Decimal, error)
	ItemAggregates(ctx context.Context, db *gorm.DB, customerSeq int64, start, end time.Time) ([]ItemAggregate, error)
	CustomerName(ctx context.Context, db *gorm.DB, customerSeq int64) (string, error)
}

var (
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidAssessor  = errors.New("invalid_assessor")
	ErrInvalidScore     = errors.New("invalid_score")
	ErrInvalidDateRange = errors.New("invalid_date_range")
)
