package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the application-level instruments. All methods are safe on
// a nil receiver so optional wiring never needs guards at call sites.
type Metrics struct {
	paymentsCreated  metric.Int64Counter
	paymentEvents    metric.Int64Counter
	webhookRejected  metric.Int64Counter
	receiptsRendered metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider registers the global meter provider: a periodic OTLP push when
// metrics are enabled, a noop provider otherwise.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second)),
	))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New creates the domain instruments on a meter named after the service.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "doula-life"
	}
	reg := instrumentSet{meter: provider.Meter(name)}

	m := &Metrics{
		paymentsCreated:  reg.counter("doulalife_payments_created_total"),
		paymentEvents:    reg.counter("doulalife_payment_events_total"),
		webhookRejected:  reg.counter("doulalife_webhook_rejected_total"),
		receiptsRendered: reg.counter("doulalife_receipts_rendered_total"),
		rateLimitAllowed: reg.counter("doulalife_rate_limit_allowed_total"),
		rateLimitDenied:  reg.counter("doulalife_rate_limit_denied_total"),
	}
	if reg.err != nil {
		return nil, reg.err
	}
	return m, nil
}

// instrumentSet collects instrument-creation errors so New reads as a flat
// list instead of six error checks.
type instrumentSet struct {
	meter metric.Meter
	err   error
}

func (s *instrumentSet) counter(name string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name)
	if err != nil && s.err == nil {
		s.err = err
	}
	return c
}

// RecordPaymentCreated increments provider checkout counts.
func (m *Metrics) RecordPaymentCreated(ctx context.Context, provider, currency string) {
	if m == nil {
		return
	}
	m.add(ctx, m.paymentsCreated,
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("currency", strings.ToUpper(strings.TrimSpace(currency))),
	)
}

// RecordPaymentEvent increments reconciled webhook event counts.
func (m *Metrics) RecordPaymentEvent(ctx context.Context, provider, eventType string) {
	if m == nil {
		return
	}
	m.add(ctx, m.paymentEvents,
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("event_type", strings.TrimSpace(eventType)),
	)
}

// RecordWebhookRejected increments counts of webhooks refused before processing.
func (m *Metrics) RecordWebhookRejected(ctx context.Context, provider, reason string) {
	if m == nil {
		return
	}
	m.add(ctx, m.webhookRejected,
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
}

// RecordReceiptRendered increments receipt render counts.
func (m *Metrics) RecordReceiptRendered(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.add(ctx, m.receiptsRendered, attribute.String("provider", strings.TrimSpace(provider)))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.add(ctx, m.rateLimitAllowed, attribute.String("endpoint", strings.TrimSpace(endpoint)))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.add(ctx, m.rateLimitDenied,
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
}

func (m *Metrics) add(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	counter.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol %q", strings.ToLower(strings.TrimSpace(protocol)))
}

// Only these labels may reach the exporter; anything else (ids, emails,
// references) would blow up cardinality or leak customer data.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"provider":    {},
	"event_type":  {},
	"currency":    {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
