package domain

import (
	"context"
	"net/http"
)

// AdapterConfig carries everything an adapter needs, resolved from the
// environment by the caller. Adapters never reach for process state.
type AdapterConfig struct {
	Provider string
	Config   map[string]any
}

// ProviderCreateRequest describes a charge to open on the provider.
// The amount is carried in both units; each adapter reads the one its
// API speaks (Stripe cents, PayPal major units).
type ProviderCreateRequest struct {
	AmountCents    int64
	AmountMajor    float64
	Currency       string
	Description    string
	Metadata       map[string]string
	ReturnURL      string
	CancelURL      string
	IdempotencyKey string
}

// ProviderHandle identifies a freshly created provider-side payment object.
type ProviderHandle struct {
	Reference    string
	ClientSecret string
	ApprovalURL  string
	State        string
}

type CaptureRequest struct {
	Reference string
	PayerID   string
}

type CaptureResult struct {
	Reference string
	PayerID   string
	Amount    float64
	Currency  string
	State     string
}

// PaymentAdapter is the provider-facing surface: object creation, capture
// where the provider flow needs one, webhook authentication and
// normalization. Verify must pass before Parse output is trusted.
type PaymentAdapter interface {
	Provider() string
	CreatePayment(ctx context.Context, req ProviderCreateRequest) (*ProviderHandle, error)
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
}

// AdapterFactory builds an adapter from config. Factories validate the
// config shape; adapters assume it.
type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (PaymentAdapter, error)
}
