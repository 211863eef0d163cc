package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesops/internal/aging/domain"
	"github.com/smallbiznis/salesops/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Cfg  config.Config
	Repo domain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	thresholds domain.Thresholds
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("aging.service"),
		repo:       p.Repo,
		thresholds: thresholdsFromConfig(p.Cfg.Credit),
	}
}

func thresholdsFromConfig(cfg config.CreditConfig) domain.Thresholds {
	t := domain.DefaultThresholds()
	if cfg.HighRiskRatio > 0 {
		t.High = decimal.NewFromFloat(cfg.HighRiskRatio)
	}
	if cfg.MediumRiskRatio > 0 {
		t.Medium = decimal.NewFromFloat(cfg.MediumRiskRatio)
	}
	return t
}

func (s *Service) GetRiskProfile(ctx context.Context, req domain.GetRiskProfileRequest) (domain.RiskProfile, error) {
	if req.CustomerSeq <= 0 {
		return domain.RiskProfile{}, domain.ErrInvalidCustomer
	}

	var (
		snapshot *domain.Snapshot
		err      error
	)
	if req.AsOf != nil {
		snapshot, err = s.repo.ByCustomerAndDate(ctx, s.db, req.CustomerSeq, normalizeDate(*req.AsOf))
	} else {
		snapshot, err = s.repo.LatestByCustomer(ctx, s.db, req.CustomerSeq)
	}
	if err != nil {
		return domain.RiskProfile{}, err
	}
	if snapshot == nil {
		// No AR data is a valid answer on the read path.
		return domain.RiskProfile{CustomerSeq: req.CustomerSeq, RiskLevel: domain.RiskLow}, nil
	}

	return domain.Classify(*snapshot, s.thresholds), nil
}

func (s *Service) ListSnapshotDates(ctx context.Context) ([]time.Time, error) {
	return s.repo.DistinctDates(ctx, s.db)
}

func (s *Service) ListProfiles(ctx context.Context, req domain.ListProfilesRequest) (domain.ListProfilesResponse, error) {
	date := normalizeDate(req.SnapshotDate)
	snapshots, err := s.repo.ListByDate(ctx, s.db, date)
	if err != nil {
		return domain.ListProfilesResponse{}, err
	}

	profiles := make([]domain.RiskProfile, 0, len(snapshots))
	for _, snapshot := range snapshots {
		profile := domain.Classify(*snapshot, s.thresholds)
		if req.RiskLevel != "" && profile.RiskLevel != req.RiskLevel {
			continue
		}
		profiles = append(profiles, profile)
	}

	return domain.ListProfilesResponse{
		SnapshotDate: date,
		Profiles:     profiles,
	}, nil
}

func (s *Service) Summary(ctx context.Context, snapshotDate time.Time) (domain.Summary, error) {
	summary, err := s.repo.SummaryByDate(ctx, s.db, normalizeDate(snapshotDate))
	if err != nil {
		return domain.Summary{}, err
	}
	return *summary, nil
}

func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
