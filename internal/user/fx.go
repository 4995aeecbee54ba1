package user

import (
	"github.com/IAmRubenNavarro/doula-life/internal/user/repository"
	"github.com/IAmRubenNavarro/doula-life/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
