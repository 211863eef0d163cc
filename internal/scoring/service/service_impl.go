package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agingdomain "github.com/smallbiznis/salesops/internal/aging/domain"
	"github.com/smallbiznis/salesops/internal/clock"
	"github.com/smallbiznis/salesops/internal/config"
	"github.com/smallbiznis/salesops/internal/observability/metrics"
	"github.com/smallbiznis/salesops/internal/scoring/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Cfg       config.Config
	Repo      domain.Repository
	AgingRepo agingdomain.Repository
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	agingRepo   agingdomain.Repository
	metrics     *metrics.Metrics
	maxIncrease decimal.Decimal
	agingZero   decimal.Decimal
}

func New(p Params) domain.Service {
	maxIncrease := domain.DefaultMaxIncreasePct
	if p.Cfg.Credit.MaxIncreasePct > 0 {
		maxIncrease = decimal.NewFromFloat(p.Cfg.Credit.MaxIncreasePct)
	}
	agingZero := domain.DefaultAgingZeroPct
	if p.Cfg.Credit.AgingScoreCapRatio > 0 {
		agingZero = decimal.NewFromFloat(p.Cfg.Credit.AgingScoreCapRatio)
	}

	return &Service{
		db:          p.DB,
		log:         p.Log.Named("scoring.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		agingRepo:   p.AgingRepo,
		metrics:     p.Metrics,
		maxIncrease: maxIncrease,
		agingZero:   agingZero,
	}
}

// factorInputs joins the four independent factor lookups before aggregation.
type factorInputs struct {
	name          string
	volumeCurrent decimal.Decimal
	volumePrior   decimal.Decimal
	snapshot      *agingdomain.Snapshot
	rating        *domain.Rating
	assessment    *domain.Assessment
}

func (s *Service) GetSimulation(ctx context.Context, req domain.GetSimulationRequest) (domain.Simulation, error) {
	if req.CustomerSeq <= 0 {
		return domain.Simulation{}, domain.ErrInvalidCustomer
	}
	if req.EndDate.Before(req.StartDate) {
		return domain.Simulation{}, domain.ErrInvalidDateRange
	}

	inputs := s.fetchFactors(ctx, req.CustomerSeq)

	sim := domain.Simulation{
		CustomerSeq:   req.CustomerSeq,
		CustomerName:  inputs.name,
		VolumeCurrent: inputs.volumeCurrent,
		VolumePrior:   inputs.volumePrior,
	}

	sim.VolumeGrowthPct = domain.VolumeGrowthPct(inputs.volumeCurrent, inputs.volumePrior)
	sim.SubScores.Volume = domain.VolumeGrowthScore(sim.VolumeGrowthPct)

	overduePct := decimal.Zero
	if inputs.snapshot != nil {
		profile := agingdomain.Classify(*inputs.snapshot, agingdomain.DefaultThresholds())
		sim.TotalAR = profile.TotalAR
		sim.OverdueAR = profile.OverdueAR
		overduePct = profile.OverdueRatio.Mul(decimal.NewFromInt(100))
	}
	sim.OverdueRatioPct = overduePct
	sim.SubScores.Aging = domain.AgingScore(overduePct, s.agingZero)

	sim.SubScores.Rating = domain.NeutralScore
	if inputs.rating != nil {
		sim.SubScores.Rating = inputs.rating.Score
		sim.RatingAgency = inputs.rating.Agency
		sim.RatingGrade = inputs.rating.Grade
	}

	sim.SubScores.Assessment = domain.NeutralScore
	if inputs.assessment != nil {
		sim.SubScores.Assessment = inputs.assessment.Score
		sim.AssessmentComment = inputs.assessment.Comment
	}

	sim.CompositeScore = domain.CompositeScore(sim.SubScores)
	sim.SuggestedRate = domain.SuggestedIncreaseRate(sim.CompositeScore, s.maxIncrease)

	aggregates, err := s.repo.ItemAggregates(ctx, s.db, req.CustomerSeq, req.StartDate, req.EndDate)
	if err != nil {
		return domain.Simulation{}, err
	}

	sim.Items = make([]domain.SimulationItem, 0, len(aggregates))
	for _, agg := range aggregates {
		recent := domain.AverageUnitPrice(agg.TotalAmount, agg.TotalQty)
		sim.Items = append(sim.Items, domain.SimulationItem{
			ItemSeq:            agg.ItemSeq,
			ItemName:           agg.ItemName,
			ItemUnit:           agg.ItemUnit,
			RecentUnitPrice:    recent,
			RecentQty:          agg.TotalQty,
			SimulatedUnitPrice: domain.SimulatePrice(recent, sim.SuggestedRate),
		})
	}

	s.metrics.RecordScoringRun(ctx, sim.CompositeScore)
	return sim, nil
}

// fetchFactors runs the four factor lookups in parallel. Every lookup
// degrades to its neutral default on failure so a composite can always be
// produced, even from an empty profile.
func (s *Service) fetchFactors(ctx context.Context, customerSeq int64) factorInputs {
	now := s.clock.Now()
	currentFrom := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	priorFrom := currentFrom.AddDate(-1, 0, 0)
	nextFrom := currentFrom.AddDate(1, 0, 0)

	var inputs factorInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		current, err := s.repo.VolumeBetween(gctx, s.db, customerSeq, currentFrom, nextFrom)
		if err != nil {
			s.log.Warn("volume lookup failed", zap.Int64("customer_seq", customerSeq), zap.Error(err))
			return nil
		}
		prior, err := s.repo.VolumeBetween(gctx, s.db, customerSeq, priorFrom, currentFrom)
		if err != nil {
			s.log.Warn("prior volume lookup failed", zap.Int64("customer_seq", customerSeq), zap.Error(err))
			return nil
		}
		inputs.volumeCurrent = current
		inputs.volumePrior = prior
		return nil
	})

	g.Go(func() error {
		snapshot, err := s.agingRepo.LatestByCustomer(gctx, s.db, customerSeq)
		if err != nil {
			s.log.Warn("aging lookup failed", zap.Int64("customer_seq", customerSeq), zap.Error(err))
			return nil
		}
		inputs.snapshot = snapshot
		return nil
	})

	g.Go(func() error {
		rating, err := s.repo.LatestRating(gctx, s.db, customerSeq)
		if err != nil {
			s.log.Warn("rating lookup failed", zap.Int64("customer_seq", customerSeq), zap.Error(err))
			return nil
		}
		inputs.rating = rating
		return nil
	})

	g.Go(func() error {
		assessment, err := s.repo.LatestAssessment(gctx, s.db, customerSeq)
		if err != nil {
			s.log.Warn("assessment lookup failed", zap.Int64("customer_seq", customerSeq), zap.Error(err))
			return nil
		}
		inputs.assessment = assessment
		return nil
	})

	_ = g.Wait()

	if inputs.name == "" {
		name, err := s.repo.CustomerName(ctx, s.db, customerSeq)
		if err != nil || name == "" {
			name = "Unknown Customer"
		}
		inputs.name = name
	}

	return inputs
}

func (s *Service) SubmitAssessment(ctx context.Context, req domain.SubmitAssessmentRequest) (domain.Assessment, error) {
	if req.CustomerSeq <= 0 {
		return domain.Assessment{}, domain.ErrInvalidCustomer
	}
	assessorID := strings.TrimSpace(req.AssessorID)
	if assessorID == "" {
		return domain.Assessment{}, domain.ErrInvalidAssessor
	}
	if req.Score < 0 || req.Score > domain.MaxScore {
		return domain.Assessment{}, domain.ErrInvalidScore
	}

	now := s.clock.Now().UTC()
	assessment := domain.Assessment{
		ID:             s.genID.Generate(),
		CustomerSeq:    req.CustomerSeq,
		AssessorID:     assessorID,
		Score:          req.Score,
		Comment:        strings.TrimSpace(req.Comment),
		AssessmentDate: now,
		CreatedAt:      now,
	}

	if err := s.repo.InsertAssessment(ctx, s.db, &assessment); err != nil {
		return domain.Assessment{}, err
	}

	return assessment, nil
}

func (s *Service) LatestRating(ctx context.Context, customerSeq int64) (*domain.Rating, error) {
	return s.repo.LatestRating(ctx, s.db, customerSeq)
}

func (s *Service) LatestAssessment(ctx context.Context, customerSeq int64) (*domain.Assessment, error) {
	return s.repo.LatestAssessment(ctx, s.db, customerSeq)
}
