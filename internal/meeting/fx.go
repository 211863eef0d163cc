package meeting

import (
	"github.com/smallbiznis/salesops/internal/meeting/repository"
	"github.com/smallbiznis/salesops/internal/meeting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meeting.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
