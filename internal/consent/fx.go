package consent

import (
	"github.com/IAmRubenNavarro/doula-life/internal/consent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consent.service",
	fx.Provide(service.New),
)
