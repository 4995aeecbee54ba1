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
	"net/http/httptest"
	"testing"
	"time"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{}}}`)
	now := time.Now().UTC()

	adapter := &Adapter{
		webhookSecret: secret,
		tolerance:     5 * time.Minute,
		now:           func() time.Time { return now },
	}

	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", buildStripeSignatureHeader(secret, payload, now.Unix()))
	if err := adapter.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	reqHeader.Set("Stripe-Signature", buildStripeSignatureHeader("wrong", payload, now.Unix()))
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	reqHeader.Del("Stripe-Signature")
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature on missing header, got %v", err)
	}
}

func TestVerifySignatureTolerance(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_stale","type":"payment_intent.succeeded","data":{"object":{}}}`)
	now := time.Now().UTC()

	adapter := &Adapter{
		webhookSecret: secret,
		tolerance:     5 * time.Minute,
		now:           func() time.Time { return now },
	}

	stale := now.Add(-6 * time.Minute).Unix()
	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", buildStripeSignatureHeader(secret, payload, stale))
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected stale timestamp rejection, got %v", err)
	}

	within := now.Add(-4 * time.Minute).Unix()
	reqHeader.Set("Stripe-Signature", buildStripeSignatureHeader(secret, payload, within))
	if err := adapter.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected signature within tolerance to pass, got %v", err)
	}
}

func TestVerifyWithoutSecret(t *testing.T) {
	adapter := &Adapter{secretKey: "sk_test", now: time.Now}
	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", "t=1,v1=abc")
	if err := adapter.Verify(context.Background(), []byte(`{}`), reqHeader); !errors.Is(err, paymentdomain.ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}
}

func TestParsePaymentEvent(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	userID := node.Generate().String()
	serviceID := node.Generate().String()
	created := time.Now().UTC().Unix()

	tests := []struct {
		name     string
		event    any
		wantType string
		amount   float64
	}{{
		name: "payment_intent.succeeded",
		event: map[string]any{
			"id":      "evt_pi",
			"type":    "payment_intent.succeeded",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":              "pi_1",
					"amount":          2500,
					"amount_received": 2500,
					"currency":        "usd",
					"created":         created,
					"metadata": map[string]any{
						"user_id":    userID,
						"service_id": serviceID,
					},
				},
			},
		},
		wantType: paymentdomain.EventTypePaymentSucceeded,
		amount:   25.00,
	}, {
		name: "payment_intent.payment_failed",
		event: map[string]any{
			"id":      "evt_fail",
			"type":    "payment_intent.payment_failed",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":       "pi_2",
					"amount":   1999,
					"currency": "usd",
					"created":  created,
					"metadata": map[string]any{
						"user_id": userID,
					},
				},
			},
		},
		wantType: paymentdomain.EventTypePaymentFailed,
		amount:   19.99,
	}}

	adapter := &Adapter{webhookSecret: "whsec_test", now: time.Now}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			event, err := adapter.Parse(context.Background(), payload)
			if err != nil {
				t.Fatalf("parse event: %v", err)
			}
			if event.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, event.Type)
			}
			if event.Amount != tt.amount {
				t.Fatalf("expected amount %v, got %v", tt.amount, event.Amount)
			}
			if event.ExternalReference == "" {
				t.Fatalf("expected intent id as external reference")
			}
			if event.Currency != "USD" {
				t.Fatalf("expected currency USD, got %s", event.Currency)
			}
			if event.Links.UserID == nil || event.Links.UserID.String() != userID {
				t.Fatalf("expected user link %s, got %v", userID, event.Links.UserID)
			}
		})
	}
}

func TestParseIgnoresOtherEventTypes(t *testing.T) {
	adapter := &Adapter{webhookSecret: "whsec_test", now: time.Now}
	payload := []byte(`{"id":"evt_sub","type":"customer.subscription.updated","data":{"object":{}}}`)
	if _, err := adapter.Parse(context.Background(), payload); !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	var gotAuth, gotIdempotency string
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotIdempotency = r.Header.Get("Idempotency-Key")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pi_test","client_secret":"pi_test_secret_abc","status":"requires_payment_method","amount":2500,"currency":"usd"}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	handle, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
		AmountCents:    2500,
		AmountMajor:    25.00,
		Currency:       "USD",
		Description:    "Doula Life payment - general",
		Metadata:       map[string]string{"user_id": "12345"},
		IdempotencyKey: "pay_1",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if handle.Reference != "pi_test" {
		t.Fatalf("expected reference pi_test, got %s", handle.Reference)
	}
	if handle.ClientSecret != "pi_test_secret_abc" {
		t.Fatalf("expected client secret, got %s", handle.ClientSecret)
	}
	if handle.ApprovalURL != "" {
		t.Fatalf("stripe handle must not carry an approval url")
	}
	if gotAuth != "Bearer sk_test" {
		t.Fatalf("expected bearer auth, got %s", gotAuth)
	}
	if gotIdempotency != "pay_1" {
		t.Fatalf("expected idempotency key pay_1, got %s", gotIdempotency)
	}
	if got := formValue(gotForm, "amount"); got != "2500" {
		t.Fatalf("expected amount 2500, got %s", got)
	}
	if got := formValue(gotForm, "currency"); got != "usd" {
		t.Fatalf("expected currency usd, got %s", got)
	}
	if got := formValue(gotForm, "automatic_payment_methods[enabled]"); got != "true" {
		t.Fatalf("expected automatic payment methods enabled, got %s", got)
	}
	if got := formValue(gotForm, "metadata[user_id]"); got != "12345" {
		t.Fatalf("expected metadata user_id, got %s", got)
	}
}

func TestCreatePaymentIntentAmountBounds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pi_max","client_secret":"pi_max_secret","status":"requires_payment_method","amount":999999,"currency":"usd"}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	for _, cents := range []int64{0, -100, 1000000} {
		_, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
			AmountCents: cents,
			Currency:    "USD",
		})
		if !errors.Is(err, paymentdomain.ErrInvalidAmount) {
			t.Fatalf("cents=%d: expected ErrInvalidAmount, got %v", cents, err)
		}
	}
	if calls != 0 {
		t.Fatalf("expected no provider traffic for out-of-range amounts, got %d calls", calls)
	}

	// The cap itself is still a valid amount.
	handle, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
		AmountCents:    999999,
		AmountMajor:    9999.99,
		Currency:       "USD",
		IdempotencyKey: "pay_max",
	})
	if err != nil {
		t.Fatalf("cents=999999: %v", err)
	}
	if handle.Reference != "pi_max" {
		t.Fatalf("expected reference pi_max, got %s", handle.Reference)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", calls)
	}
}

func TestCreatePaymentIntentErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{{
		name:    "card declined",
		status:  http.StatusPaymentRequired,
		body:    `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`,
		wantErr: paymentdomain.ErrProviderRejected,
	}, {
		name:    "bad api key",
		status:  http.StatusUnauthorized,
		body:    `{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`,
		wantErr: paymentdomain.ErrMisconfigured,
	}, {
		name:    "rate limited",
		status:  http.StatusTooManyRequests,
		body:    `{"error":{"type":"rate_limit_error"}}`,
		wantErr: paymentdomain.ErrProviderUnavailable,
	}, {
		name:    "server error",
		status:  http.StatusInternalServerError,
		body:    `{}`,
		wantErr: paymentdomain.ErrProviderUnavailable,
	}, {
		name:    "invalid params",
		status:  http.StatusBadRequest,
		body:    `{"error":{"type":"invalid_request_error","message":"Missing required param"}}`,
		wantErr: paymentdomain.ErrInvalidRequest,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			adapter := newTestAdapter(t, server.URL)
			_, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
				AmountCents: 2500,
				Currency:    "USD",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCaptureUnsupported(t *testing.T) {
	adapter := &Adapter{secretKey: "sk_test", now: time.Now}
	if _, err := adapter.Capture(context.Background(), paymentdomain.CaptureRequest{Reference: "pi_1"}); !errors.Is(err, paymentdomain.ErrCaptureUnsupported) {
		t.Fatalf("expected ErrCaptureUnsupported, got %v", err)
	}
}

func newTestAdapter(t *testing.T, baseURL string) paymentdomain.PaymentAdapter {
	t.Helper()

	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{
		Provider: "stripe",
		Config: map[string]any{
			"secret_key":                  "sk_test",
			"webhook_secret":              "whsec_test",
			"signature_tolerance_seconds": 300,
			"api_base_url":                baseURL,
		},
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

func formValue(form map[string][]string, key string) string {
	values := form[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
