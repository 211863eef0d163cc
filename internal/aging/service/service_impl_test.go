package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesops/internal/aging/domain"
	"github.com/smallbiznis/salesops/internal/aging/repository"
	"github.com/smallbiznis/salesops/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAgingDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	// Create tables manually to match production schema
	db.Exec(`CREATE TABLE IF NOT EXISTS ar_aging_snapshots (
		id BIGINT PRIMARY KEY,
		customer_seq BIGINT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		snapshot_date TIMESTAMP NOT NULL,
		total_ar NUMERIC NOT NULL DEFAULT 0,
		aging_0_30 NUMERIC NOT NULL DEFAULT 0,
		aging_31_60 NUMERIC NOT NULL DEFAULT 0,
		aging_61_90 NUMERIC NOT NULL DEFAULT 0,
		aging_91_120 NUMERIC NOT NULL DEFAULT 0,
		aging_121_150 NUMERIC NOT NULL DEFAULT 0,
		aging_151_180 NUMERIC NOT NULL DEFAULT 0,
		aging_181_210 NUMERIC NOT NULL DEFAULT 0,
		aging_211_240 NUMERIC NOT NULL DEFAULT 0,
		aging_241_270 NUMERIC NOT NULL DEFAULT 0,
		aging_271_300 NUMERIC NOT NULL DEFAULT 0,
		aging_301_330 NUMERIC NOT NULL DEFAULT 0,
		aging_331_365 NUMERIC NOT NULL DEFAULT 0,
		aging_over_365 NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP
	)`)

	return db
}

func seedSnapshot(t *testing.T, db *gorm.DB, node *snowflake.Node, customerSeq int64, name string, date time.Time, total, current, overdue int64) domain.Snapshot {
	s := domain.Snapshot{
		ID:           node.Generate(),
		CustomerSeq:  customerSeq,
		CustomerName: name,
		SnapshotDate: date,
		TotalAR:      decimal.NewFromInt(total),
		Aging0_30:    decimal.NewFromInt(current),
		Aging31_60:   decimal.NewFromInt(overdue),
	}
	assert.NoError(t, db.Create(&s).Error)
	return s
}

func TestGetRiskProfile(t *testing.T) {
	db := setupAgingDB(t)
	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Cfg:  config.Config{},
		Repo: repository.Provide(),
	})

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, node, 1001, "Acme Trading", july, 1000, 900, 100)
	seedSnapshot(t, db, node, 1001, "Acme Trading", august, 1000, 500, 500)

	t.Run("invalid customer", func(t *testing.T) {
		_, err := svc.GetRiskProfile(context.Background(), domain.GetRiskProfileRequest{CustomerSeq: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
	})

	t.Run("latest snapshot wins by default", func(t *testing.T) {
		profile, err := svc.GetRiskProfile(context.Background(), domain.GetRiskProfileRequest{CustomerSeq: 1001})
		assert.NoError(t, err)
		assert.Equal(t, domain.RiskHigh, profile.RiskLevel)
		assert.True(t, profile.SnapshotDate.Equal(august))
	})

	t.Run("as-of pins an older snapshot", func(t *testing.T) {
		profile, err := svc.GetRiskProfile(context.Background(), domain.GetRiskProfileRequest{
			CustomerSeq: 1001,
			AsOf:        &july,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.RiskLow, profile.RiskLevel)
		assert.True(t, profile.SnapshotDate.Equal(july))
	})

	t.Run("no snapshot degrades to a zeroed low-risk profile", func(t *testing.T) {
		profile, err := svc.GetRiskProfile(context.Background(), domain.GetRiskProfileRequest{CustomerSeq: 9999})
		assert.NoError(t, err)
		assert.Equal(t, domain.RiskLow, profile.RiskLevel)
		assert.True(t, profile.TotalAR.IsZero())
	})
}

func TestListProfilesAndDates(t *testing.T) {
	db := setupAgingDB(t)
	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Cfg:  config.Config{},
		Repo: repository.Provide(),
	})

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, node, 1001, "Acme Trading", august, 1000, 500, 500)
	seedSnapshot(t, db, node, 1002, "Beta Logistics", august, 1000, 800, 200)
	seedSnapshot(t, db, node, 1003, "Gamma Foods", august, 1000, 1000, 0)
	seedSnapshot(t, db, node, 1001, "Acme Trading", july, 1000, 1000, 0)

	t.Run("lists every profile at a date", func(t *testing.T) {
		resp, err := svc.ListProfiles(context.Background(), domain.ListProfilesRequest{SnapshotDate: august})
		assert.NoError(t, err)
		assert.Len(t, resp.Profiles, 3)
		assert.True(t, resp.SnapshotDate.Equal(august))
	})

	t.Run("filters by tier", func(t *testing.T) {
		resp, err := svc.ListProfiles(context.Background(), domain.ListProfilesRequest{
			SnapshotDate: august,
			RiskLevel:    domain.RiskHigh,
		})
		assert.NoError(t, err)
		assert.Len(t, resp.Profiles, 1)
		assert.Equal(t, int64(1001), resp.Profiles[0].CustomerSeq)
	})

	t.Run("distinct dates newest first", func(t *testing.T) {
		dates, err := svc.ListSnapshotDates(context.Background())
		assert.NoError(t, err)
		if assert.Len(t, dates, 2) {
			assert.True(t, dates[0].Equal(august))
			assert.True(t, dates[1].Equal(july))
		}
	})
}

func TestSummary(t *testing.T) {
	db := setupAgingDB(t)
	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Cfg:  config.Config{},
		Repo: repository.Provide(),
	})

	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedSnapshot(t, db, node, 1001, "Acme Trading", august, 1000, 500, 500)
	seedSnapshot(t, db, node, 1002, "Beta Logistics", august, 600, 400, 200)

	summary, err := svc.Summary(context.Background(), august)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), summary.CustomerCount)
	assert.Equal(t, "1600", summary.TotalAR.String())
	assert.Equal(t, "700", summary.Overdue30.String())
	assert.True(t, summary.Overdue60.IsZero())
	assert.True(t, summary.OverdueOver90.IsZero())
}
