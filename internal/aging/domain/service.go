package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type GetRiskProfileRequest struct {
	CustomerSeq int64
	AsOf        *time.Time
}

type ListProfilesRequest struct {
	SnapshotDate time.Time
	RiskLevel    RiskLevel
}

type ListProfilesResponse struct {
	SnapshotDate time.Time     `json:"snapshot_date"`
	Profiles     []RiskProfile `json:"profiles"`
}

type Service interface {
	// GetRiskProfile classifies the latest snapshot (or the snapshot at
	// AsOf) for one customer. A customer with no snapshot yields a zeroed
	// low-risk profile, not an error.
	GetRiskProfile(ctx context.Context, req GetRiskProfileRequest) (RiskProfile, error)
	ListSnapshotDates(ctx context.Context) ([]time.Time, error)
	ListProfiles(ctx context.Context, req ListProfilesRequest) (ListProfilesResponse, error)
	Summary(ctx context.Context, snapshotDate time.Time) (Summary, error)
}

type Repository interface {
	LatestByCustomer(ctx context.Context, db *gorm.DB, customerSeq int64) (*Snapshot, error)
	ByCustomerAndDate(ctx context.Context, db *gorm.DB, customerSeq int64, date time.Time) (*Snapshot, error)
	LatestDate(ctx context.Context, db *gorm.DB) (*time.Time, error)
	ListByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]*Snapshot, error)
	DistinctDates(ctx context.Context, db *gorm.DB) ([]time.Time, error)
	SummaryByDate(ctx context.Context, db *gorm.DB, date time.Time) (*Summary, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	// ErrNoSnapshot is returned by callers that require AR data to exist,
	// such as adding a customer to a credit meeting. The scoring path never
	// surfaces it.
	ErrNoSnapshot = errors.New("no_ar_snapshot")
)
