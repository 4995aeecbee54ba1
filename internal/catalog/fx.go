package catalog

import (
	"github.com/IAmRubenNavarro/doula-life/internal/catalog/repository"
	"github.com/IAmRubenNavarro/doula-life/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
