package appointment

import (
	"github.com/IAmRubenNavarro/doula-life/internal/appointment/repository"
	"github.com/IAmRubenNavarro/doula-life/internal/appointment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("appointment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
