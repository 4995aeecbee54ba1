package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
)

const providerName = "paypal"

// PayPal amounts are major-unit decimals; single charges are capped here.
const maxAmountMajor = 10000.0

// Headers PayPal stamps on every webhook delivery.
var transmissionHeaders = []string{
	"Paypal-Auth-Algo",
	"Paypal-Transmission-Id",
	"Paypal-Cert-Id",
	"Paypal-Transmission-Sig",
	"Paypal-Transmission-Time",
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return providerName
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.PaymentAdapter, error) {
	clientID := strings.TrimSpace(readString(cfg.Config, "client_id"))
	clientSecret := strings.TrimSpace(readString(cfg.Config, "client_secret"))
	webhookID := strings.TrimSpace(readString(cfg.Config, "webhook_id"))

	baseURL := strings.TrimRight(strings.TrimSpace(readString(cfg.Config, "base_url")), "/")
	if baseURL == "" {
		baseURL = "https://api.sandbox.paypal.com"
	}

	return &Adapter{
		webhookID: webhookID,
		client:    newAPIClient(baseURL, clientID, clientSecret),
	}, nil
}

// Adapter drives the PayPal v1 Payments sale flow: create with redirect
// URLs, buyer approval on paypal.com, then an explicit capture (execute)
// when the buyer returns.
type Adapter struct {
	webhookID string
	client    *apiClient
}

func (a *Adapter) Provider() string {
	return providerName
}

func (a *Adapter) CreatePayment(ctx context.Context, req paymentdomain.ProviderCreateRequest) (*paymentdomain.ProviderHandle, error) {
	if !a.client.configured() {
		return nil, paymentdomain.ErrMisconfigured
	}
	if req.AmountMajor <= 0 || req.AmountMajor > maxAmountMajor {
		return nil, paymentdomain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return nil, paymentdomain.ErrInvalidCurrency
	}
	if strings.TrimSpace(req.ReturnURL) == "" || strings.TrimSpace(req.CancelURL) == "" {
		return nil, paymentdomain.ErrMissingRedirectURLs
	}

	custom := ""
	if len(req.Metadata) > 0 {
		encoded, err := json.Marshal(req.Metadata)
		if err == nil {
			custom = string(encoded)
		}
	}
	sku := strings.TrimSpace(req.Metadata["service_id"])
	if sku == "" {
		sku = "general"
	}

	total := fmt.Sprintf("%.2f", req.AmountMajor)
	payment := paypalPayment{
		Intent: "sale",
		Payer:  paypalPayer{PaymentMethod: "paypal"},
		RedirectURLs: &paypalRedirectURLs{
			ReturnURL: req.ReturnURL,
			CancelURL: req.CancelURL,
		},
		Transactions: []paypalTransaction{{
			ItemList: &paypalItemList{Items: []paypalItem{{
				Name:     "Doula Life Service",
				SKU:      sku,
				Price:    total,
				Currency: currency,
				Quantity: 1,
			}}},
			Amount:      paypalAmount{Total: total, Currency: currency},
			Description: strings.TrimSpace(req.Description),
			Custom:      custom,
		}},
	}

	created, err := a.client.createPayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	approvalURL := ""
	for _, link := range created.Links {
		if strings.EqualFold(strings.TrimSpace(link.Rel), "approval_url") {
			approvalURL = strings.TrimSpace(link.Href)
			break
		}
	}
	if approvalURL == "" {
		return nil, fmt.Errorf("%w: approval link missing", paymentdomain.ErrProviderRejected)
	}

	return &paymentdomain.ProviderHandle{
		Reference:   created.ID,
		ApprovalURL: approvalURL,
		State:       created.State,
	}, nil
}

func (a *Adapter) Capture(ctx context.Context, req paymentdomain.CaptureRequest) (*paymentdomain.CaptureResult, error) {
	if !a.client.configured() {
		return nil, paymentdomain.ErrMisconfigured
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, paymentdomain.ErrInvalidRequest
	}
	payerID := strings.TrimSpace(req.PayerID)
	if payerID == "" {
		return nil, paymentdomain.ErrInvalidRequest
	}

	// The provider-declared state decides whether execution is even worth
	// attempting; terminal states map to non-retryable errors.
	current, err := a.client.getPayment(ctx, reference)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(current.State)) {
	case "completed", "approved_and_captured":
		return nil, paymentdomain.ErrAlreadyCaptured
	case "cancelled", "canceled", "failed", "expired":
		return nil, paymentdomain.ErrNotApprovable
	}

	executed, err := a.client.executePayment(ctx, reference, payerID)
	if err != nil {
		return nil, err
	}

	result := &paymentdomain.CaptureResult{
		Reference: executed.ID,
		PayerID:   payerID,
		State:     executed.State,
	}
	if result.Reference == "" {
		result.Reference = reference
	}
	if len(executed.Transactions) > 0 {
		amount := executed.Transactions[0].Amount
		result.Currency = strings.ToUpper(strings.TrimSpace(amount.Currency))
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(amount.Total), 64); err == nil {
			result.Amount = parsed
		}
	}
	return result, nil
}

// Verify only checks that the PayPal transmission headers are present.
// This is not cryptographic verification; absence of any header fails
// closed.
// TODO: verify signatures via /v1/notifications/verify-webhook-signature
// using the configured webhook_id.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	for _, name := range transmissionHeaders {
		if strings.TrimSpace(headers.Get(name)) == "" {
			return paymentdomain.ErrInvalidSignature
		}
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var event paypalWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	var eventType string
	switch strings.TrimSpace(event.EventType) {
	case "PAYMENT.SALE.COMPLETED":
		eventType = paymentdomain.EventTypePaymentSucceeded
	case "PAYMENT.SALE.DENIED":
		eventType = paymentdomain.EventTypePaymentFailed
	case "PAYMENT.SALE.REFUNDED":
		eventType = paymentdomain.EventTypeRefunded
	default:
		return nil, paymentdomain.ErrEventIgnored
	}

	var resource paypalSaleResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	// Sale resources point back at the payment that opened them; the
	// resource's own id only stands in when that link is absent.
	reference := strings.TrimSpace(resource.ParentPayment)
	if reference == "" {
		reference = strings.TrimSpace(resource.ID)
	}
	if reference == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	amount := 0.0
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(resource.Amount.Total), 64); err == nil {
		amount = parsed
	}

	return &paymentdomain.PaymentEvent{
		Provider:          providerName,
		ProviderEventID:   event.ID,
		ExternalReference: reference,
		Type:              eventType,
		Amount:            amount,
		Currency:          strings.ToUpper(strings.TrimSpace(resource.Amount.Currency)),
		Links:             parseSubjectLinks(resource.Custom),
		OccurredAt:        timestamp(resource.CreateTime, event.CreateTime),
		RawPayload:        payload,
	}, nil
}

type paypalWebhookEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime string          `json:"create_time"`
	Resource   json.RawMessage `json:"resource"`
}

type paypalSaleResource struct {
	ID            string       `json:"id"`
	State         string       `json:"state"`
	Amount        paypalAmount `json:"amount"`
	ParentPayment string       `json:"parent_payment"`
	Custom        string       `json:"custom"`
	CreateTime    string       `json:"create_time"`
}

func timestamp(primary string, fallback string) time.Time {
	for _, value := range []string{primary, fallback} {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Now().UTC()
}

// parseSubjectLinks recovers the metadata bag the orchestrator stamped
// into the transaction's custom field at create time.
func parseSubjectLinks(custom string) paymentdomain.SubjectLinks {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return paymentdomain.SubjectLinks{}
	}
	var bag map[string]string
	if err := json.Unmarshal([]byte(custom), &bag); err != nil {
		return paymentdomain.SubjectLinks{}
	}
	return paymentdomain.SubjectLinks{
		UserID:        bagID(bag, "user_id"),
		ServiceID:     bagID(bag, "service_id"),
		AppointmentID: bagID(bag, "appointment_id"),
		TrainingID:    bagID(bag, "training_id"),
	}
}

func bagID(bag map[string]string, key string) *snowflake.ID {
	raw := strings.TrimSpace(bag[key])
	if raw == "" {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

func readString(config map[string]any, key string) string {
	value, ok := config[key]
	if !ok {
		return ""
	}
	cast, ok := value.(string)
	if !ok {
		return ""
	}
	return cast
}
