package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is one append-only record of a workflow mutation: who did what
// to which entity, with free-form metadata for diagnostics.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"column:actor_id;not null" json:"actor_id"`
	Action     string            `gorm:"column:action;not null;index" json:"action"`
	TargetType string            `gorm:"column:target_type;not null" json:"target_type"`
	TargetID   string            `gorm:"column:target_id;index" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	Limit      int
}

type Service interface {
	AuditLog(ctx context.Context, actorID, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

var ErrInvalidAction = errors.New("invalid_action")
