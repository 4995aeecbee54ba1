package payment

import (
	"github.com/IAmRubenNavarro/doula-life/internal/payment/adapters"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/adapters/paypal"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/adapters/stripe"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/repository"
	paymentservice "github.com/IAmRubenNavarro/doula-life/internal/payment/service"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			stripe.NewFactory(),
			paypal.NewFactory(),
		)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(func(s *paymentservice.Service) domain.Service { return s }),
	fx.Provide(webhook.NewService),
)
