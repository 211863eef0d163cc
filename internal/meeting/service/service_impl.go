package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	agingdomain "github.com/smallbiznis/salesops/internal/aging/domain"
	auditdomain "github.com/smallbiznis/salesops/internal/audit/domain"
	"github.com/smallbiznis/salesops/internal/clock"
	"github.com/smallbiznis/salesops/internal/config"
	"github.com/smallbiznis/salesops/internal/meeting/domain"
	"github.com/smallbiznis/salesops/internal/observability/metrics"
	"github.com/smallbiznis/salesops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
	AuditSvc  auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	repo       domain.Repository
	agingRepo  agingdomain.Repository
	auditSvc   auditdomain.Service
	metrics    *metrics.Metrics
	thresholds agingdomain.Thresholds
}

func New(p Params) domain.Service {
	thresholds := agingdomain.DefaultThresholds()
	if p.Cfg.Credit.HighRiskRatio > 0 {
		thresholds.High = decimal.NewFromFloat(p.Cfg.Credit.HighRiskRatio)
	}
	if p.Cfg.Credit.MediumRiskRatio > 0 {
		thresholds.Medium = decimal.NewFromFloat(p.Cfg.Credit.MediumRiskRatio)
	}

	return &Service{
		db:         p.DB,
		log:        p.Log.Named("meeting.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       p.Repo,
		agingRepo:  p.AgingRepo,
		auditSvc:   p.AuditSvc,
		metrics:    p.Metrics,
		thresholds: thresholds,
	}
}

func (s *Service) CreateMeeting(ctx context.Context, req domain.CreateMeetingRequest) (domain.Meeting, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Meeting{}, domain.ErrInvalidName
	}
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return domain.Meeting{}, domain.ErrInvalidActor
	}

	now := s.clock.Now().UTC()
	meetingDate := req.MeetingDate
	if meetingDate.IsZero() {
		meetingDate = now
	}

	meeting := domain.Meeting{
		ID:          s.genID.Generate(),
		Name:        name,
		MeetingDate: meetingDate.UTC(),
		Status:      domain.StatusPlanned,
		Note:        strings.TrimSpace(req.Note),
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertMeeting(ctx, s.db, &meeting); err != nil {
		return domain.Meeting{}, err
	}

	s.audit(ctx, actor, "credit_meeting.created", meeting.ID.String(), map[string]any{
		"name": name,
	})
	return meeting, nil
}

// statusRank enforces the forward-only PLANNED -> IN_PROGRESS -> CLOSED path.
func statusRank(status domain.MeetingStatus) int {
	switch status {
	case domain.StatusPlanned:
		return 0
	case domain.StatusInProgress:
		return 1
	case domain.StatusClosed:
		return 2
	default:
		return -1
	}
}

func (s *Service) SetStatus(ctx context.Context, meetingID snowflake.ID, status domain.MeetingStatus, actor string) (domain.Meeting, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return domain.Meeting{}, domain.ErrInvalidActor
	}
	if statusRank(status) < 0 {
		return domain.Meeting{}, domain.ErrInvalidStatus
	}

	var updated domain.Meeting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meeting, err := s.repo.FindMeeting(ctx, tx, meetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}
		if statusRank(status) <= statusRank(meeting.Status) {
			return domain.ErrStatusTransition
		}

		now := s.clock.Now().UTC()
		rows, err := s.repo.UpdateMeetingStatus(ctx, tx, meetingID, meeting.Status, status, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// The status moved underneath us.
			return domain.ErrStatusTransition
		}

		updated = *meeting
		updated.Status = status
		updated.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Meeting{}, err
	}

	s.audit(ctx, actor, "credit_meeting.status_changed", meetingID.String(), map[string]any{
		"status": string(status),
	})
	return updated, nil
}

func (s *Service) AddCustomer(ctx context.Context, req domain.AddCustomerRequest) (domain.MeetingCustomer, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return domain.MeetingCustomer{}, domain.ErrInvalidActor
	}
	if req.CustomerSeq <= 0 {
		return domain.MeetingCustomer{}, agingdomain.ErrInvalidCustomer
	}

	var added domain.MeetingCustomer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meeting, err := s.repo.FindMeeting(ctx, tx, req.MeetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}

		snapshot, err := s.agingRepo.LatestByCustomer(ctx, tx, req.CustomerSeq)
		if err != nil {
			return err
		}
		if snapshot == nil || snapshot.TotalAR.Sign() <= 0 {
			return domain.ErrNoARData
		}

		record, err := s.insertMember(ctx, tx, meeting.ID, *snapshot, strings.TrimSpace(req.Opinion), actor)
		if err != nil {
			return err
		}
		added = *record
		return nil
	})
	if err != nil {
		return domain.MeetingCustomer{}, err
	}

	s.audit(ctx, actor, "credit_meeting.customer_added", added.ID.String(), map[string]any{
		"meeting_id":   req.MeetingID.String(),
		"customer_seq": req.CustomerSeq,
		"risk_level":   string(added.RiskLevel),
	})
	return added, nil
}

// insertMember pins the snapshot and its classification on the membership
// row. The unique (meeting, customer) index is the duplicate guard.
func (s *Service) insertMember(ctx context.Context, tx *gorm.DB, meetingID snowflake.ID, snapshot agingdomain.Snapshot, opinion, actor string) (*domain.MeetingCustomer, error) {
	profile := agingdomain.Classify(snapshot, s.thresholds)
	now := s.clock.Now().UTC()

	record := domain.MeetingCustomer{
		ID:           s.genID.Generate(),
		MeetingID:    meetingID,
		CustomerSeq:  snapshot.CustomerSeq,
		CustomerName: snapshot.CustomerName,
		SnapshotID:   snapshot.ID,
		SnapshotDate: snapshot.SnapshotDate,
		RiskLevel:    profile.RiskLevel,
		TotalAR:      profile.TotalAR,
		OverdueAR:    profile.OverdueAR,
		DecisionCode: domain.DecisionForRisk(profile.RiskLevel),
		SalesOpinion: opinion,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertCustomer(ctx, tx, &record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyInMeeting
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) RemoveCustomer(ctx context.Context, meetingCustomerID snowflake.ID, actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return domain.ErrInvalidActor
	}

	rows, err := s.repo.DeleteCustomer(ctx, s.db, meetingCustomerID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}

	s.audit(ctx, actor, "credit_meeting.customer_removed", meetingCustomerID.String(), nil)
	return nil
}

func (s *Service) UpdateCustomerOpinion(ctx context.Context, meetingCustomerID snowflake.ID, opinion, actor string) (domain.MeetingCustomer, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return domain.MeetingCustomer{}, domain.ErrInvalidActor
	}

	now := s.clock.Now().UTC()
	rows, err := s.repo.UpdateCustomerOpinion(ctx, s.db, meetingCustomerID, strings.TrimSpace(opinion), now)
	if err != nil {
		return domain.MeetingCustomer{}, err
	}
	if rows == 0 {
		return domain.MeetingCustomer{}, domain.ErrCustomerNotFound
	}

	record, err := s.repo.FindCustomer(ctx, s.db, meetingCustomerID)
	if err != nil {
		return domain.MeetingCustomer{}, err
	}
	if record == nil {
		return domain.MeetingCustomer{}, domain.ErrCustomerNotFound
	}

	s.audit(ctx, actor, "credit_meeting.opinion_updated", meetingCustomerID.String(), nil)
	return *record, nil
}

func (s *Service) AutoAddByRisk(ctx context.Context, req domain.AutoAddRequest) (domain.AutoAddResult, error) {
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		return domain.AutoAddResult{}, domain.ErrInvalidActor
	}
	switch req.RiskLevel {
	case agingdomain.RiskHigh, agingdomain.RiskMedium, agingdomain.RiskLow:
	default:
		return domain.AutoAddResult{}, domain.ErrInvalidRiskLevel
	}

	meeting, err := s.repo.FindMeeting(ctx, s.db, req.MeetingID)
	if err != nil {
		return domain.AutoAddResult{}, err
	}
	if meeting == nil {
		return domain.AutoAddResult{}, domain.ErrMeetingNotFound
	}

	latest, err := s.agingRepo.LatestDate(ctx, s.db)
	if err != nil {
		return domain.AutoAddResult{}, err
	}
	if latest == nil {
		return domain.AutoAddResult{}, domain.ErrNoSnapshotDate
	}

	snapshots, err := s.agingRepo.ListByDate(ctx, s.db, *latest)
	if err != nil {
		return domain.AutoAddResult{}, err
	}

	members, err := s.repo.MemberSeqs(ctx, s.db, req.MeetingID)
	if err != nil {
		return domain.AutoAddResult{}, err
	}

	result := domain.AutoAddResult{SnapshotDate: *latest}
	for _, snapshot := range snapshots {
		// Customers with no receivables never qualify for review.
		if snapshot.TotalAR.Sign() <= 0 {
			continue
		}
		profile := agingdomain.Classify(*snapshot, s.thresholds)
		if profile.RiskLevel != req.RiskLevel {
			continue
		}
		if _, ok := members[snapshot.CustomerSeq]; ok {
			result.Skipped++
			continue
		}

		// Each add is its own transaction: a failure here must not roll
		// back customers already added.
		addErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.insertMember(ctx, tx, req.MeetingID, *snapshot, "", actor)
			return err
		})
		if addErr != nil {
			s.log.Warn("auto-add failed for customer",
				zap.Int64("customer_seq", snapshot.CustomerSeq),
				zap.Error(addErr),
			)
			result.Failures = append(result.Failures, domain.AutoAddFailure{
				CustomerSeq: snapshot.CustomerSeq,
				Reason:      addErr.Error(),
			})
			continue
		}
		result.Added = append(result.Added, snapshot.CustomerSeq)
	}

	s.metrics.RecordAutoAdd(ctx, len(result.Added), len(result.Failures))
	s.audit(ctx, actor, "credit_meeting.auto_add", req.MeetingID.String(), map[string]any{
		"risk_level": string(req.RiskLevel),
		"added":      len(result.Added),
		"skipped":    result.Skipped,
		"failed":     len(result.Failures),
	})
	return result, nil
}

func (s *Service) ListMeetings(ctx context.Context, req domain.ListMeetingsRequest) ([]*domain.MeetingWithCounts, error) {
	meetings, err := s.repo.ListMeetings(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(meetings))
	for _, meeting := range meetings {
		ids = append(ids, meeting.ID)
	}
	counts, err := s.repo.CountsByMeeting(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.MeetingWithCounts, 0, len(meetings))
	for _, meeting := range meetings {
		out = append(out, &domain.MeetingWithCounts{
			Meeting: *meeting,
			Counts:  counts[meeting.ID],
		})
	}
	return out, nil
}

func (s *Service) GetMeetingDetail(ctx context.Context, meetingID snowflake.ID) (domain.MeetingDetail, error) {
	meeting, err := s.repo.FindMeeting(ctx, s.db, meetingID)
	if err != nil {
		return domain.MeetingDetail{}, err
	}
	if meeting == nil {
		return domain.MeetingDetail{}, domain.ErrMeetingNotFound
	}

	customers, err := s.repo.ListCustomers(ctx, s.db, meetingID)
	if err != nil {
		return domain.MeetingDetail{}, err
	}
	counts, err := s.repo.CountsByMeeting(ctx, s.db, []snowflake.ID{meetingID})
	if err != nil {
		return domain.MeetingDetail{}, err
	}

	return domain.MeetingDetail{
		Meeting:   *meeting,
		Counts:    counts[meetingID],
		Customers: customers,
	}, nil
}

func (s *Service) audit(ctx context.Context, actor, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, actor, action, "credit_meeting", targetID, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
