package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/salesops/internal/audit/domain"
	"github.com/smallbiznis/salesops/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, actorID, action, targetType, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		actorID = "unknown"
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(targetID),
		Metadata:   payload,
		CreatedAt:  s.clock.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("audit insert failed",
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
