package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/IAmRubenNavarro/doula-life/internal/config"
	obsmetrics "github.com/IAmRubenNavarro/doula-life/internal/observability/metrics"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/adapters"
	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	paymentservice "github.com/IAmRubenNavarro/doula-life/internal/payment/service"
	"github.com/IAmRubenNavarro/doula-life/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	PaymentSvc  *paymentservice.Service
	Adapters    *adapters.Registry
	Cfg         config.Config
	PaymentsCfg *config.PaymentsConfigHolder
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

// Service authenticates raw provider deliveries and hands the normalized
// events to the reconciler.
type Service struct {
	log         *zap.Logger
	paymentSvc  *paymentservice.Service
	adapters    *adapters.Registry
	cfg         config.Config
	paymentsCfg *config.PaymentsConfigHolder
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.WebhookService {
	return &Service{
		log:         p.Log.Named("payment.webhook"),
		paymentSvc:  p.PaymentSvc,
		adapters:    p.Adapters,
		cfg:         p.Cfg,
		paymentsCfg: p.PaymentsCfg,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	// Every delivery gets a correlation id up front so verification, parsing,
	// and reconciliation log under the same trail.
	ctx, correlationID := correlation.Ensure(ctx)

	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if s.adapters == nil || !s.adapters.ProviderExists(provider) {
		s.reject(ctx, provider, "unsupported_provider")
		return paymentdomain.ErrProviderNotFound
	}
	if !json.Valid(payload) {
		s.reject(ctx, provider, "invalid_payload")
		return paymentdomain.ErrInvalidPayload
	}

	adapter, err := s.adapters.NewAdapter(provider, adapters.BuildConfig(s.cfg, s.paymentsCfg.Get(), provider))
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.reject(ctx, provider, "verification_failed")
		return err
	}
	if provider == paymentdomain.ProviderPayPal {
		s.log.Debug("paypal webhook accepted on transmission header presence only")
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			return nil
		}
		s.reject(ctx, provider, "parse_failed")
		return err
	}
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.Provider = provider
	if event.RawPayload == nil {
		event.RawPayload = payload
	}

	if s.paymentSvc == nil {
		return errors.New("payment_service_unavailable")
	}

	err = s.paymentSvc.ProcessEvent(ctx, event, payload)
	if err != nil && errors.Is(err, paymentdomain.ErrPersistenceFailure) {
		// The delivery is authenticated, so surfacing an error here would
		// only trigger a redelivery storm against a struggling database.
		// Acknowledge and leave a loud trail for manual reconciliation.
		s.log.Error("webhook reconciliation failed after verification",
			zap.String("provider", provider),
			zap.String("provider_event_id", event.ProviderEventID),
			zap.String("external_reference", event.ExternalReference),
			zap.String("event_type", event.Type),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		return nil
	}
	return err
}

func (s *Service) reject(ctx context.Context, provider string, reason string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordWebhookRejected(ctx, provider, reason)
	}
}
