package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/salesops/internal/audit/domain"
	"github.com/smallbiznis/salesops/internal/clock"
	"github.com/smallbiznis/salesops/internal/observability/metrics"
	"github.com/smallbiznis/salesops/internal/unblock/domain"
	"github.com/smallbiznis/salesops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("unblock.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateRequest(ctx context.Context, req domain.CreateRequestRequest) (domain.Request, error) {
	if req.CustomerSeq <= 0 {
		return domain.Request{}, domain.ErrInvalidCustomer
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.Request{}, domain.ErrInvalidReason
	}
	requestedBy := strings.TrimSpace(req.RequestedBy)
	if requestedBy == "" {
		return domain.Request{}, domain.ErrInvalidActor
	}

	now := s.clock.Now().UTC()
	request := domain.Request{
		ID:                     s.genID.Generate(),
		CustomerSeq:            req.CustomerSeq,
		Reason:                 reason,
		ExpectedCollectionDate: req.ExpectedCollectionDate,
		ExpectedAmount:         req.ExpectedAmount,
		CollectionPlan:         strings.TrimSpace(req.CollectionPlan),
		Status:                 domain.StatusRequested,
		RequestedBy:            requestedBy,
		RequestedAt:            now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		s.log.Error("failed to create unblock request",
			zap.Int64("customer_seq", req.CustomerSeq),
			zap.Error(err),
		)
		return domain.Request{}, err
	}

	s.audit(ctx, requestedBy, "credit_unblock.requested", request.ID.String(), map[string]any{
		"customer_seq":    req.CustomerSeq,
		"expected_amount": req.ExpectedAmount.String(),
	})
	s.metrics.RecordUnblockTransition(ctx, string(domain.StatusRequested))
	return request, nil
}

func (s *Service) ApproveStage1(ctx context.Context, req domain.DecisionRequest) (domain.Request, error) {
	return s.transition(ctx, req, "credit_unblock.approved_1",
		[]domain.RequestStatus{domain.StatusRequested},
		domain.TransitionUpdate{
			Status:   domain.StatusApproved1,
			ByColumn: "approved_by_1",
			AtColumn: "approved_at_1",
		})
}

func (s *Service) ApproveFinal(ctx context.Context, req domain.DecisionRequest) (domain.Request, error) {
	return s.transition(ctx, req, "credit_unblock.approved_final",
		[]domain.RequestStatus{domain.StatusApproved1},
		domain.TransitionUpdate{
			Status:   domain.StatusApprovedFinal,
			ByColumn: "approved_by_final",
			AtColumn: "approved_at_final",
		})
}

func (s *Service) Reject(ctx context.Context, req domain.DecisionRequest) (domain.Request, error) {
	return s.transition(ctx, req, "credit_unblock.rejected",
		[]domain.RequestStatus{domain.StatusRequested, domain.StatusApproved1},
		domain.TransitionUpdate{
			Status:   domain.StatusRejected,
			ByColumn: "rejected_by",
			AtColumn: "rejected_at",
		})
}

// transition runs the guarded update and, when no row moved, looks the
// request up once more to tell a missing request apart from one that is
// simply not in the required pre-state.
func (s *Service) transition(ctx context.Context, req domain.DecisionRequest, action string, from []domain.RequestStatus, update domain.TransitionUpdate) (domain.Request, error) {
	approver := strings.TrimSpace(req.ApproverID)
	if approver == "" {
		return domain.Request{}, domain.ErrInvalidActor
	}

	update.By = approver
	update.At = s.clock.Now().UTC()
	update.Comment = strings.TrimSpace(req.Comment)

	var request domain.Request
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.TransitionStatus(ctx, tx, req.RequestID, from, update)
		if err != nil {
			return err
		}
		if rows == 0 {
			existing, err := s.repo.FindByID(ctx, tx, req.RequestID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrRequestNotFound
			}
			s.log.Warn("unblock transition rejected",
				zap.String("request_id", req.RequestID.String()),
				zap.String("current_status", string(existing.Status)),
				zap.String("target_status", string(update.Status)),
			)
			return domain.ErrStatusConflict
		}

		refreshed, err := s.repo.FindByID(ctx, tx, req.RequestID)
		if err != nil {
			return err
		}
		if refreshed == nil {
			return domain.ErrRequestNotFound
		}
		request = *refreshed
		return nil
	})
	if err != nil {
		return domain.Request{}, err
	}

	s.audit(ctx, approver, action, request.ID.String(), map[string]any{
		"customer_seq": request.CustomerSeq,
		"status":       string(request.Status),
	})
	s.metrics.RecordUnblockTransition(ctx, string(request.Status))
	return request, nil
}

func (s *Service) ListRequests(ctx context.Context, req domain.ListRequestsRequest) (domain.ListRequestsResponse, error) {
	limit := req.PageSize
	if limit <= 0 {
		limit = 25
	}

	var cursor *domain.ListCursor
	if req.PageToken != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListRequestsResponse{}, domain.ErrInvalidPageToken
		}
		at, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListRequestsResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(decoded.ID)
		if err != nil {
			return domain.ListRequestsResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.ListCursor{Before: at, BeforeID: id}
	}

	rows, err := s.repo.List(ctx, s.db, req, cursor, limit+1)
	if err != nil {
		return domain.ListRequestsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, limit, func(r *domain.Request) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        r.ID.String(),
			CreatedAt: r.RequestedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	requests := make([]domain.Request, 0, len(rows))
	for _, r := range rows {
		requests = append(requests, *r)
	}
	return domain.ListRequestsResponse{
		PageInfo: *pageInfo,
		Requests: requests,
	}, nil
}

func (s *Service) audit(ctx context.Context, actor, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, actor, action, "credit_unblock_request", targetID, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
