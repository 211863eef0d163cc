package aging

import (
	"github.com/smallbiznis/salesops/internal/aging/repository"
	"github.com/smallbiznis/salesops/internal/aging/service"
	"go.uber.org/fx"
)

var Module = fx.Module("aging.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
