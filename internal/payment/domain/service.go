package domain

import (
	"context"
	"errors"
	"net/http"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type CreatePaymentRequest struct {
	UserID        string
	Amount        float64
	Currency      string
	Provider      string
	ServiceID     string
	AppointmentID string
	TrainingID    string
	Description   string
	ReturnURL     string
	CancelURL     string
}

// CreatePaymentResponse is what a client needs to finish the charge:
// ClientSecret for Stripe confirmation, ApprovalURL for the PayPal
// redirect. Status is always "awaiting_confirmation"; the webhook
// pipeline moves the record from there.
type CreatePaymentResponse struct {
	Provider          string       `json:"provider"`
	PaymentID         snowflake.ID `json:"payment_id"`
	ExternalReference string       `json:"external_reference"`
	Status            string       `json:"status"`
	ClientSecret      string       `json:"client_secret,omitempty"`
	ApprovalURL       string       `json:"approval_url,omitempty"`
}

const StatusAwaitingConfirmation = "awaiting_confirmation"

type CapturePaymentRequest struct {
	PaymentID string
	PayerID   string
}

type CapturePaymentResponse struct {
	Status    string  `json:"status"`
	PaymentID string  `json:"payment_id"`
	PayerID   string  `json:"payer_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	State     string  `json:"state"`
}

type ListPaymentRequest struct {
	PageToken string
	PageSize  int32
	UserID    string
	Status    string
	Provider  string
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type GetPaymentRequest struct {
	ID string
}

type UpdatePaymentRequest struct {
	ID            string
	Status        *string
	ServiceID     *string
	AppointmentID *string
	TrainingID    *string
}

type DeletePaymentRequest struct {
	ID string
}

// Service creates payments against a provider and owns the local record.
type Service interface {
	Create(context.Context, CreatePaymentRequest) (CreatePaymentResponse, error)
	CapturePayPal(context.Context, CapturePaymentRequest) (CapturePaymentResponse, error)
	List(context.Context, ListPaymentRequest) (ListPaymentResponse, error)
	GetByID(context.Context, GetPaymentRequest) (Payment, error)
	Update(context.Context, UpdatePaymentRequest) (Payment, error)
	Delete(context.Context, DeletePaymentRequest) error
}

// WebhookService authenticates and reconciles raw provider deliveries.
type WebhookService interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}

var (
	ErrInvalidProvider     = errors.New("invalid_provider")
	ErrProviderNotFound    = errors.New("unsupported_provider")
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidReference    = errors.New("invalid_reference")
	ErrMissingRedirectURLs = errors.New("missing_redirect_urls")

	// Provider call outcomes. ErrProviderRejected wraps a human-readable
	// decline reason; the others are terminal classifications.
	ErrMisconfigured       = errors.New("provider_misconfigured")
	ErrProviderUnavailable = errors.New("provider_unavailable")
	ErrProviderRejected    = errors.New("provider_rejected")

	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")

	ErrPaymentNotFound    = errors.New("payment_not_found")
	ErrAlreadyCaptured    = errors.New("payment_already_captured")
	ErrNotApprovable      = errors.New("payment_not_approvable")
	ErrStatusRegression   = errors.New("status_regression")
	ErrCaptureUnsupported = errors.New("capture_unsupported")

	// ErrPersistenceFailure marks a local write that failed after the
	// delivery was already authenticated. The ingest layer acknowledges
	// these and leaves a trail instead of inviting a redelivery storm.
	ErrPersistenceFailure = errors.New("persistence_failure")
)
