package paypal

import (
	"context"
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

func TestVerifyHeaderPresence(t *testing.T) {
	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	payload := []byte(`{"id":"WH-1","event_type":"PAYMENT.SALE.COMPLETED"}`)

	reqHeader := http.Header{}
	reqHeader.Set("Paypal-Auth-Algo", "SHA256withRSA")
	reqHeader.Set("Paypal-Transmission-Id", "tid-1")
	reqHeader.Set("Paypal-Cert-Id", "cert-1")
	reqHeader.Set("Paypal-Transmission-Sig", "sig-1")
	reqHeader.Set("Paypal-Transmission-Time", time.Now().UTC().Format(time.RFC3339))
	if err := adapter.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected complete transmission headers to pass, got %v", err)
	}

	reqHeader.Del("Paypal-Transmission-Sig")
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature on missing header, got %v", err)
	}

	if err := adapter.Verify(context.Background(), payload, http.Header{}); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature on empty headers, got %v", err)
	}
}

func TestParseSaleEvents(t *testing.T) {
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	userID := node.Generate().String()
	trainingID := node.Generate().String()
	custom, err := json.Marshal(map[string]string{"user_id": userID, "training_id": trainingID})
	if err != nil {
		t.Fatalf("marshal custom: %v", err)
	}

	tests := []struct {
		name      string
		eventType string
		wantType  string
	}{
		{"sale completed", "PAYMENT.SALE.COMPLETED", paymentdomain.EventTypePaymentSucceeded},
		{"sale denied", "PAYMENT.SALE.DENIED", paymentdomain.EventTypePaymentFailed},
		{"sale refunded", "PAYMENT.SALE.REFUNDED", paymentdomain.EventTypeRefunded},
	}

	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(fmt.Sprintf(`{
				"id": "WH-58D329510W468432D-8HN650336L201105X",
				"event_type": %q,
				"create_time": "2026-02-09T21:31:00Z",
				"resource": {
					"id": "9T0916710M1105906",
					"parent_payment": "PAYID-TEST123",
					"state": "completed",
					"amount": {"total": "30.00", "currency": "USD"},
					"custom": %q,
					"create_time": "2026-02-09T21:30:00Z"
				}
			}`, tt.eventType, string(custom)))

			event, err := adapter.Parse(context.Background(), payload)
			if err != nil {
				t.Fatalf("parse event: %v", err)
			}
			if event.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, event.Type)
			}
			if event.ExternalReference != "PAYID-TEST123" {
				t.Fatalf("expected parent payment reference, got %s", event.ExternalReference)
			}
			if event.Amount != 30.00 {
				t.Fatalf("expected amount 30.00, got %v", event.Amount)
			}
			if event.Currency != "USD" {
				t.Fatalf("expected currency USD, got %s", event.Currency)
			}
			if event.Links.UserID == nil || event.Links.UserID.String() != userID {
				t.Fatalf("expected user link %s, got %v", userID, event.Links.UserID)
			}
			if event.Links.TrainingID == nil || event.Links.TrainingID.String() != trainingID {
				t.Fatalf("expected training link %s, got %v", trainingID, event.Links.TrainingID)
			}
			if !event.OccurredAt.Equal(time.Date(2026, 2, 9, 21, 30, 0, 0, time.UTC)) {
				t.Fatalf("expected resource create_time, got %v", event.OccurredAt)
			}
		})
	}
}

func TestParseFallsBackToResourceID(t *testing.T) {
	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	payload := []byte(`{
		"id": "WH-2",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"create_time": "2026-02-09T21:31:00Z",
		"resource": {
			"id": "9T0916710M1105906",
			"amount": {"total": "12.50", "currency": "USD"}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.ExternalReference != "9T0916710M1105906" {
		t.Fatalf("expected resource id fallback, got %s", event.ExternalReference)
	}
}

func TestParseIgnoresOtherEventTypes(t *testing.T) {
	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	payload := []byte(`{"id":"WH-3","event_type":"BILLING.PLAN.CREATED","resource":{}}`)
	if _, err := adapter.Parse(context.Background(), payload); !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
}

func TestCreatePaymentApproval(t *testing.T) {
	var tokenCalls int
	var gotPayment paypalPayment

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenCalls++
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client_test" || pass != "secret_test" {
				t.Fatalf("expected basic auth credentials, got %s:%s", user, pass)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"A21AA-token","token_type":"Bearer","expires_in":32400}`)
		case "/v1/payments/payment":
			if got := r.Header.Get("Authorization"); got != "Bearer A21AA-token" {
				t.Fatalf("expected bearer token, got %s", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotPayment); err != nil {
				t.Fatalf("decode payment body: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"id": "PAYID-CREATED1",
				"state": "created",
				"links": [
					{"href": "https://api.sandbox.paypal.com/v1/payments/payment/PAYID-CREATED1", "rel": "self", "method": "GET"},
					{"href": "https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_express-checkout&token=EC-60385559L1062554J", "rel": "approval_url", "method": "REDIRECT"}
				]
			}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	handle, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
		AmountMajor: 45.50,
		Currency:    "USD",
		Metadata:    map[string]string{"user_id": "777", "service_id": "888"},
		ReturnURL:   "https://app.doulalife.test/payments/success",
		CancelURL:   "https://app.doulalife.test/payments/cancel",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if handle.Reference != "PAYID-CREATED1" {
		t.Fatalf("expected reference PAYID-CREATED1, got %s", handle.Reference)
	}
	if handle.ApprovalURL == "" {
		t.Fatalf("expected approval url on handle")
	}
	if handle.ClientSecret != "" {
		t.Fatalf("paypal handle must not carry a client secret")
	}
	if tokenCalls != 1 {
		t.Fatalf("expected one token exchange, got %d", tokenCalls)
	}
	if gotPayment.Intent != "sale" {
		t.Fatalf("expected sale intent, got %s", gotPayment.Intent)
	}
	if gotPayment.RedirectURLs.ReturnURL != "https://app.doulalife.test/payments/success" {
		t.Fatalf("expected return url, got %s", gotPayment.RedirectURLs.ReturnURL)
	}
	if len(gotPayment.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(gotPayment.Transactions))
	}
	tx := gotPayment.Transactions[0]
	if tx.Amount.Total != "45.50" || tx.Amount.Currency != "USD" {
		t.Fatalf("expected amount 45.50 USD, got %s %s", tx.Amount.Total, tx.Amount.Currency)
	}
	if len(tx.ItemList.Items) != 1 || tx.ItemList.Items[0].SKU != "888" {
		t.Fatalf("expected service sku on line item, got %+v", tx.ItemList.Items)
	}
	var bag map[string]string
	if err := json.Unmarshal([]byte(tx.Custom), &bag); err != nil {
		t.Fatalf("custom field must round-trip as json: %v", err)
	}
	if bag["user_id"] != "777" {
		t.Fatalf("expected user_id in custom bag, got %v", bag)
	}
}

func TestCreatePaymentRequiresRedirectURLs(t *testing.T) {
	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	_, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
		AmountMajor: 10.00,
		Currency:    "USD",
	})
	if !errors.Is(err, paymentdomain.ErrMissingRedirectURLs) {
		t.Fatalf("expected ErrMissingRedirectURLs, got %v", err)
	}
}

func TestCreatePaymentAmountBounds(t *testing.T) {
	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	for _, amount := range []float64{0, -5, 10000.01} {
		_, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
			AmountMajor: amount,
			Currency:    "USD",
			ReturnURL:   "https://app.doulalife.test/ok",
			CancelURL:   "https://app.doulalife.test/cancel",
		})
		if !errors.Is(err, paymentdomain.ErrInvalidAmount) {
			t.Fatalf("amount=%v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestCreatePaymentMissingApprovalLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/oauth2/token":
			fmt.Fprint(w, `{"access_token":"A21AA-token","expires_in":32400}`)
		case "/v1/payments/payment":
			fmt.Fprint(w, `{"id":"PAYID-NOLINK","state":"created","links":[]}`)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.CreatePayment(context.Background(), paymentdomain.ProviderCreateRequest{
		AmountMajor: 10.00,
		Currency:    "USD",
		ReturnURL:   "https://app.doulalife.test/ok",
		CancelURL:   "https://app.doulalife.test/cancel",
	})
	if !errors.Is(err, paymentdomain.ErrProviderRejected) {
		t.Fatalf("expected ErrProviderRejected when approval link missing, got %v", err)
	}
}

func TestCaptureStateMapping(t *testing.T) {
	tests := []struct {
		name    string
		state   string
		wantErr error
	}{
		{"already completed", "completed", paymentdomain.ErrAlreadyCaptured},
		{"cancelled", "cancelled", paymentdomain.ErrNotApprovable},
		{"expired", "expired", paymentdomain.ErrNotApprovable},
		{"failed", "failed", paymentdomain.ErrNotApprovable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Path {
				case "/v1/oauth2/token":
					fmt.Fprint(w, `{"access_token":"A21AA-token","expires_in":32400}`)
				case "/v1/payments/payment/PAYID-STATE":
					fmt.Fprintf(w, `{"id":"PAYID-STATE","state":%q}`, tt.state)
				default:
					t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
				}
			}))
			defer server.Close()

			adapter := newTestAdapter(t, server.URL)
			_, err := adapter.Capture(context.Background(), paymentdomain.CaptureRequest{
				Reference: "PAYID-STATE",
				PayerID:   "PAYER-1",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("state=%s: expected %v, got %v", tt.state, tt.wantErr, err)
			}
		})
	}
}

func TestCaptureExecutesApprovedPayment(t *testing.T) {
	var tokenCalls, executeCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v1/oauth2/token":
			tokenCalls++
			fmt.Fprint(w, `{"access_token":"A21AA-token","expires_in":32400}`)
		case r.URL.Path == "/v1/payments/payment/PAYID-APPROVED" && r.Method == http.MethodGet:
			fmt.Fprint(w, `{"id":"PAYID-APPROVED","state":"approved"}`)
		case r.URL.Path == "/v1/payments/payment/PAYID-APPROVED/execute" && r.Method == http.MethodPost:
			executeCalls++
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode execute body: %v", err)
			}
			if body["payer_id"] != "PAYER-42" {
				t.Fatalf("expected payer_id PAYER-42, got %v", body["payer_id"])
			}
			fmt.Fprint(w, `{
				"id": "PAYID-APPROVED",
				"state": "approved",
				"transactions": [{"amount": {"total": "64.00", "currency": "USD"}}]
			}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	result, err := adapter.Capture(context.Background(), paymentdomain.CaptureRequest{
		Reference: "PAYID-APPROVED",
		PayerID:   "PAYER-42",
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if result.Amount != 64.00 || result.Currency != "USD" {
		t.Fatalf("expected executed amount 64.00 USD, got %v %s", result.Amount, result.Currency)
	}
	if executeCalls != 1 {
		t.Fatalf("expected one execute call, got %d", executeCalls)
	}
	if tokenCalls != 1 {
		t.Fatalf("expected the cached token to be reused, got %d exchanges", tokenCalls)
	}
}

func TestCaptureUnknownPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/oauth2/token":
			fmt.Fprint(w, `{"access_token":"A21AA-token","expires_in":32400}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"name":"INVALID_RESOURCE_ID","message":"Requested resource ID was not found."}`)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.Capture(context.Background(), paymentdomain.CaptureRequest{
		Reference: "PAYID-MISSING",
		PayerID:   "PAYER-1",
	})
	if !errors.Is(err, paymentdomain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestCaptureRequiresReferenceAndPayer(t *testing.T) {
	adapter := newTestAdapter(t, "https://api.sandbox.paypal.com")
	if _, err := adapter.Capture(context.Background(), paymentdomain.CaptureRequest{PayerID: "PAYER-1"}); !errors.Is(err, paymentdomain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest on blank reference, got %v", err)
	}
	if _, err := adapter.Capture(context.Background(), paymentdomain.CaptureRequest{Reference: "PAYID-1"}); !errors.Is(err, paymentdomain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest on blank payer, got %v", err)
	}
}

func newTestAdapter(t *testing.T, baseURL string) paymentdomain.PaymentAdapter {
	t.Helper()

	adapter, err := NewFactory().NewAdapter(paymentdomain.AdapterConfig{
		Provider: "paypal",
		Config: map[string]any{
			"client_id":     "client_test",
			"client_secret": "secret_test",
			"webhook_id":    "WH-ID-TEST",
			"base_url":      baseURL,
		},
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}
