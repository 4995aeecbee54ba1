package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

type fakeWebhookService struct {
	calls        int
	lastProvider string
	lastPayload  []byte
	lastHeaders  http.Header
	err          error
}

func (f *fakeWebhookService) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	f.calls++
	f.lastProvider = provider
	f.lastPayload = payload
	f.lastHeaders = headers
	_ = ctx
	return f.err
}

func newWebhookRouter(svc paymentdomain.WebhookService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{webhookSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/webhooks/:provider", srv.HandlePaymentWebhook)
	return router
}

func postWebhook(router *gin.Engine, provider, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+provider, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestWebhookHandlerAcknowledgesIngestedEvent(t *testing.T) {
	svc := &fakeWebhookService{}
	router := newWebhookRouter(svc)

	resp := postWebhook(router, "stripe", `{"id":"evt_1","type":"payment_intent.succeeded"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if svc.calls != 1 {
		t.Fatalf("expected 1 ingest call, got %d", svc.calls)
	}
	if svc.lastProvider != "stripe" {
		t.Fatalf("expected provider stripe, got %q", svc.lastProvider)
	}
	if string(svc.lastPayload) != `{"id":"evt_1","type":"payment_intent.succeeded"}` {
		t.Fatalf("payload not forwarded verbatim: %s", svc.lastPayload)
	}
	if svc.lastHeaders.Get("Stripe-Signature") == "" {
		t.Fatal("expected signature header to be forwarded")
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %q", body["status"])
	}
}

func TestWebhookHandlerAcknowledgesDuplicateDelivery(t *testing.T) {
	svc := &fakeWebhookService{err: paymentdomain.ErrEventAlreadyProcessed}
	router := newWebhookRouter(svc)

	resp := postWebhook(router, "stripe", `{"id":"evt_1"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected duplicate delivery to be acknowledged with 200, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %q", body["status"])
	}
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	svc := &fakeWebhookService{err: paymentdomain.ErrInvalidSignature}
	router := newWebhookRouter(svc)

	resp := postWebhook(router, "stripe", `{"id":"evt_1"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "invalid_signature" {
		t.Fatalf("expected invalid_signature code, got %+v", body.Error.Errors)
	}
}

func TestWebhookHandlerRejectsUnknownProvider(t *testing.T) {
	svc := &fakeWebhookService{err: paymentdomain.ErrProviderNotFound}
	router := newWebhookRouter(svc)

	resp := postWebhook(router, "square", `{"id":"evt_1"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Field != "provider" {
		t.Fatalf("expected provider field error, got %+v", body.Error.Errors)
	}
}

func TestWebhookHandlerSurfacesBrokenProviderConfig(t *testing.T) {
	svc := &fakeWebhookService{err: paymentdomain.ErrMisconfigured}
	router := newWebhookRouter(svc)

	resp := postWebhook(router, "paypal", `{"id":"WH-1"}`)

	// Pre-verification failures return 5xx so the provider redelivers once
	// the credentials are fixed.
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}
