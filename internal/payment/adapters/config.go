package adapters

import (
	"github.com/IAmRubenNavarro/doula-life/internal/config"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
)

// BuildConfig resolves the adapter config for a provider from the process
// environment plus the tunable payments settings. Base URLs are included
// so tests can point adapters at local servers.
func BuildConfig(cfg config.Config, payments config.PaymentsConfig, provider string) domain.AdapterConfig {
	switch provider {
	case domain.ProviderStripe:
		return domain.AdapterConfig{
			Provider: provider,
			Config: map[string]any{
				"secret_key":                  cfg.StripeSecretKey,
				"webhook_secret":              cfg.StripeWebhookSecret,
				"signature_tolerance_seconds": payments.Webhook.SignatureToleranceSeconds,
				"api_base_url":                cfg.StripeAPIBaseURL,
			},
		}
	case domain.ProviderPayPal:
		return domain.AdapterConfig{
			Provider: provider,
			Config: map[string]any{
				"client_id":     cfg.PayPalClientID,
				"client_secret": cfg.PayPalClientSecret,
				"webhook_id":    cfg.PayPalWebhookID,
				"base_url":      cfg.PayPalBaseURL(),
			},
		}
	}
	return domain.AdapterConfig{Provider: provider, Config: map[string]any{}}
}

// Configured reports whether the environment carries credentials for the
// provider. Used by health reporting; says nothing about key validity.
func Configured(cfg config.Config, provider string) bool {
	switch provider {
	case domain.ProviderStripe:
		return cfg.StripeSecretKey != ""
	case domain.ProviderPayPal:
		return cfg.PayPalClientID != "" && cfg.PayPalClientSecret != ""
	}
	return false
}
