package training

import (
	"github.com/IAmRubenNavarro/doula-life/internal/training/repository"
	"github.com/IAmRubenNavarro/doula-life/internal/training/service"
	"go.uber.org/fx"
)

var Module = fx.Module("training.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
