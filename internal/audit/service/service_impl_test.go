package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/salesops/internal/audit/domain"
	"github.com/smallbiznis/salesops/internal/audit/repository"
	"github.com/smallbiznis/salesops/internal/clock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuditDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	db.Exec(`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP NOT NULL
	)`)

	return db
}

func TestAuditLog(t *testing.T) {
	db := setupAuditDB(t)
	node, _ := snowflake.NewNode(1)
	clk := clock.NewFakeClock(time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		GenID: node,
		Repo:  repository.Provide(),
	})
	ctx := context.Background()

	t.Run("rejects blank action", func(t *testing.T) {
		err := svc.AuditLog(ctx, "user_1", "  ", "credit_meeting", "42", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidAction)
	})

	t.Run("defaults unknown actor and records metadata", func(t *testing.T) {
		err := svc.AuditLog(ctx, "", "credit_meeting.created", "credit_meeting", "42", map[string]any{
			"name": "August credit review",
			"":     "dropped",
		})
		assert.NoError(t, err)

		logs, err := svc.List(ctx, domain.ListFilter{Action: "credit_meeting.created"})
		assert.NoError(t, err)
		if assert.Len(t, logs, 1) {
			assert.Equal(t, "unknown", logs[0].ActorID)
			assert.Equal(t, "42", logs[0].TargetID)
			assert.Contains(t, logs[0].Metadata, "name")
			assert.NotContains(t, logs[0].Metadata, "")
		}
	})

	t.Run("filters by target", func(t *testing.T) {
		assert.NoError(t, svc.AuditLog(ctx, "mgr_1", "credit_unblock.rejected", "credit_unblock_request", "77", nil))

		logs, err := svc.List(ctx, domain.ListFilter{TargetType: "credit_unblock_request"})
		assert.NoError(t, err)
		assert.Len(t, logs, 1)

		logs, err = svc.List(ctx, domain.ListFilter{TargetID: "42"})
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
	})
}
