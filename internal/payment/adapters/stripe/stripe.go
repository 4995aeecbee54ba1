package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
)

const providerName = "stripe"

// Stripe amounts are integer cents; anything above this is out of range
// for a single charge here.
const maxAmountCents = 999999

const defaultToleranceSeconds = 300

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return providerName
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.PaymentAdapter, error) {
	secretKey := strings.TrimSpace(readString(cfg.Config, "secret_key"))
	webhookSecret := strings.TrimSpace(readString(cfg.Config, "webhook_secret"))
	if secretKey == "" && webhookSecret == "" {
		return nil, paymentdomain.ErrMisconfigured
	}

	tolerance := readInt(cfg.Config, "signature_tolerance_seconds")
	if tolerance <= 0 {
		tolerance = defaultToleranceSeconds
	}

	baseURL := strings.TrimRight(strings.TrimSpace(readString(cfg.Config, "api_base_url")), "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}

	return &Adapter{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		tolerance:     time.Duration(tolerance) * time.Second,
		client:        newAPIClient(baseURL, secretKey),
		now:           time.Now,
	}, nil
}

// Adapter talks to the Stripe REST API and authenticates its webhooks.
// Create needs secret_key, Verify needs webhook_secret; each operation
// fails closed when its credential is absent.
type Adapter struct {
	secretKey     string
	webhookSecret string
	tolerance     time.Duration
	client        *apiClient
	now           func() time.Time
}

func (a *Adapter) Provider() string {
	return providerName
}

func (a *Adapter) CreatePayment(ctx context.Context, req paymentdomain.ProviderCreateRequest) (*paymentdomain.ProviderHandle, error) {
	if a.secretKey == "" {
		return nil, paymentdomain.ErrMisconfigured
	}
	if req.AmountCents <= 0 || req.AmountCents > maxAmountCents {
		return nil, paymentdomain.ErrInvalidAmount
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		return nil, paymentdomain.ErrInvalidCurrency
	}

	intent, err := a.client.createPaymentIntent(ctx, createIntentParams{
		AmountCents:    req.AmountCents,
		Currency:       currency,
		Description:    strings.TrimSpace(req.Description),
		Metadata:       req.Metadata,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	return &paymentdomain.ProviderHandle{
		Reference:    intent.ID,
		ClientSecret: intent.ClientSecret,
		State:        intent.Status,
	}, nil
}

// Capture is a PayPal-only step; Stripe settles through client-side
// confirmation and reports back over webhooks.
func (a *Adapter) Capture(ctx context.Context, req paymentdomain.CaptureRequest) (*paymentdomain.CaptureResult, error) {
	return nil, paymentdomain.ErrCaptureUnsupported
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.webhookSecret == "" {
		return paymentdomain.ErrMisconfigured
	}
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	if a.tolerance > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return paymentdomain.ErrInvalidSignature
		}
		drift := a.now().UTC().Sub(time.Unix(ts, 0).UTC())
		if drift < 0 {
			drift = -drift
		}
		if drift > a.tolerance {
			return paymentdomain.ErrInvalidSignature
		}
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		return a.parseIntent(event, payload, paymentdomain.EventTypePaymentSucceeded)
	case "payment_intent.payment_failed":
		return a.parseIntent(event, payload, paymentdomain.EventTypePaymentFailed)
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type paymentIntent struct {
	ID             string         `json:"id"`
	ClientSecret   string         `json:"client_secret"`
	Status         string         `json:"status"`
	Amount         int64          `json:"amount"`
	AmountReceived int64          `json:"amount_received"`
	Currency       string         `json:"currency"`
	Created        int64          `json:"created"`
	Metadata       map[string]any `json:"metadata"`
}

func (a *Adapter) parseIntent(event stripeEvent, payload []byte, eventType string) (*paymentdomain.PaymentEvent, error) {
	var intent paymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	cents := intent.AmountReceived
	if cents <= 0 {
		cents = intent.Amount
	}

	occurredAt := timestamp(intent.Created, event.Created)
	return &paymentdomain.PaymentEvent{
		Provider:          providerName,
		ProviderEventID:   event.ID,
		ExternalReference: intent.ID,
		Type:              eventType,
		Amount:            float64(cents) / 100,
		Currency:          strings.ToUpper(strings.TrimSpace(intent.Currency)),
		Links:             parseSubjectLinks(intent.Metadata),
		OccurredAt:        occurredAt,
		RawPayload:        payload,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}

func parseSubjectLinks(metadata map[string]any) paymentdomain.SubjectLinks {
	return paymentdomain.SubjectLinks{
		UserID:        metadataID(metadata, "user_id"),
		ServiceID:     metadataID(metadata, "service_id"),
		AppointmentID: metadataID(metadata, "appointment_id"),
		TrainingID:    metadataID(metadata, "training_id"),
	}
}

func metadataID(metadata map[string]any, key string) *snowflake.ID {
	raw := readMetadataValue(metadata, key)
	if raw == "" {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

func readMetadataValue(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key]
	if !ok {
		return ""
	}
	switch cast := value.(type) {
	case string:
		return strings.TrimSpace(cast)
	case float64:
		if cast == 0 {
			return ""
		}
		return strconv.FormatInt(int64(cast), 10)
	case json.Number:
		return cast.String()
	case int64:
		return strconv.FormatInt(cast, 10)
	case int:
		return strconv.Itoa(cast)
	}
	return ""
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

func readInt(config map[string]any, key string) int {
	value, ok := config[key]
	if !ok {
		return 0
	}
	switch cast := value.(type) {
	case int:
		return cast
	case int64:
		return int(cast)
	case float64:
		return int(cast)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(cast))
		if err == nil {
			return parsed
		}
	}
	return 0
}
