package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesops/internal/aging"
	"github.com/smallbiznis/salesops/internal/audit"
	"github.com/smallbiznis/salesops/internal/clock"
	"github.com/smallbiznis/salesops/internal/config"
	"github.com/smallbiznis/salesops/internal/logger"
	"github.com/smallbiznis/salesops/internal/meeting"
	"github.com/smallbiznis/salesops/internal/migration"
	"github.com/smallbiznis/salesops/internal/observability/metrics"
	"github.com/smallbiznis/salesops/internal/scoring"
	"github.com/smallbiznis/salesops/internal/unblock"
	"github.com/smallbiznis/salesops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional Domains
		audit.Module,
		aging.Module,
		scoring.Module,
		meeting.Module,
		unblock.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
