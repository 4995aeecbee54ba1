package enrollment

import (
	"github.com/IAmRubenNavarro/doula-life/internal/enrollment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enrollment.service",
	fx.Provide(service.New),
)
