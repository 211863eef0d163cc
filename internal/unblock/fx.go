package unblock

import (
	"github.com/smallbiznis/salesops/internal/unblock/repository"
	"github.com/smallbiznis/salesops/internal/unblock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("unblock.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
