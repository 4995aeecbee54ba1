package adapters

import (
	"strings"

	"github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
)

// Registry resolves a provider slug ("stripe", "paypal") to the factory that
// builds its adapter. Lookups are case- and whitespace-insensitive so a
// webhook path segment can be used as-is.
type Registry struct {
	factories map[string]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	byProvider := make(map[string]domain.AdapterFactory, len(factories))
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		if key := normalizeProvider(factory.Provider()); key != "" {
			byProvider[key] = factory
		}
	}
	return &Registry{factories: byProvider}
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	_, ok := r.factories[normalizeProvider(provider)]
	return ok
}

func (r *Registry) NewAdapter(provider string, cfg domain.AdapterConfig) (domain.PaymentAdapter, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	factory, ok := r.factories[normalizeProvider(provider)]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return factory.NewAdapter(cfg)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
