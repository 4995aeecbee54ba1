package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "github.com/IAmRubenNavarro/doula-life/internal/auth/domain"
	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type fakePaymentService struct {
	createCalls  int
	captureCalls int
	deleteCalls  int
	lastCreate   paymentdomain.CreatePaymentRequest
	lastDelete   paymentdomain.DeletePaymentRequest

	createResp  paymentdomain.CreatePaymentResponse
	captureResp paymentdomain.CapturePaymentResponse
	payment     paymentdomain.Payment
	createErr   error
	captureErr  error
	getErr      error
	deleteErr   error
}

func (f *fakePaymentService) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (paymentdomain.CreatePaymentResponse, error) {
	f.createCalls++
	f.lastCreate = req
	_ = ctx
	return f.createResp, f.createErr
}

func (f *fakePaymentService) CapturePayPal(ctx context.Context, req paymentdomain.CapturePaymentRequest) (paymentdomain.CapturePaymentResponse, error) {
	f.captureCalls++
	_ = ctx
	_ = req
	return f.captureResp, f.captureErr
}

func (f *fakePaymentService) List(ctx context.Context, req paymentdomain.ListPaymentRequest) (paymentdomain.ListPaymentResponse, error) {
	_ = ctx
	_ = req
	return paymentdomain.ListPaymentResponse{}, nil
}

func (f *fakePaymentService) GetByID(ctx context.Context, req paymentdomain.GetPaymentRequest) (paymentdomain.Payment, error) {
	_ = ctx
	_ = req
	return f.payment, f.getErr
}

func (f *fakePaymentService) Update(ctx context.Context, req paymentdomain.UpdatePaymentRequest) (paymentdomain.Payment, error) {
	_ = ctx
	_ = req
	return f.payment, nil
}

func (f *fakePaymentService) Delete(ctx context.Context, req paymentdomain.DeletePaymentRequest) error {
	f.deleteCalls++
	f.lastDelete = req
	_ = ctx
	return f.deleteErr
}

// newPaymentRouter mounts the payment handlers behind the real bearer
// middleware; the fake auth service hands every request the given role.
func newPaymentRouter(svc paymentdomain.Service, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	auth := &fakeAuthService{claims: authdomain.Claims{UserID: snowflake.ID(7), Role: role}}
	srv := &Server{authsvc: auth, paymentSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	api := router.Group("/api")
	api.Use(srv.AuthRequired())
	api.POST("/payments", srv.CreatePayment)
	api.GET("/payments/:id", srv.GetPaymentByID)
	api.DELETE("/payments/:id", srv.DeletePayment)
	api.POST("/payments/paypal/capture/:payment_id", srv.CapturePayPalPayment)
	return router
}

func doPaymentRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreatePaymentHandlerReturnsProviderHandle(t *testing.T) {
	svc := &fakePaymentService{createResp: paymentdomain.CreatePaymentResponse{
		Provider:          "stripe",
		PaymentID:         snowflake.ID(101),
		ExternalReference: "pi_123",
		Status:            paymentdomain.StatusAwaitingConfirmation,
		ClientSecret:      "pi_123_secret",
	}}
	router := newPaymentRouter(svc, "client")

	resp := doPaymentRequest(router, http.MethodPost, "/api/payments",
		`{"provider":" stripe ","amount":49.99,"currency":" usd ","service_id":"88"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", svc.createCalls)
	}
	if svc.lastCreate.Provider != "stripe" || svc.lastCreate.Currency != "usd" {
		t.Fatalf("expected trimmed fields, got %+v", svc.lastCreate)
	}
	if svc.lastCreate.Amount != 49.99 || svc.lastCreate.ServiceID != "88" {
		t.Fatalf("unexpected create request: %+v", svc.lastCreate)
	}

	var body struct {
		Data paymentdomain.CreatePaymentResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Data.ClientSecret != "pi_123_secret" || body.Data.Status != paymentdomain.StatusAwaitingConfirmation {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
	if body.Data.ApprovalURL != "" {
		t.Fatalf("stripe response must not carry an approval url, got %q", body.Data.ApprovalURL)
	}
}

func TestCreatePaymentHandlerRejectsMalformedBody(t *testing.T) {
	svc := &fakePaymentService{}
	router := newPaymentRouter(svc, "client")

	resp := doPaymentRequest(router, http.MethodPost, "/api/payments", `{"amount":`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.createCalls != 0 {
		t.Fatal("expected payment service not to be called on malformed body")
	}
}

func TestCreatePaymentHandlerMapsUnsupportedProvider(t *testing.T) {
	svc := &fakePaymentService{createErr: paymentdomain.ErrProviderNotFound}
	router := newPaymentRouter(svc, "client")

	resp := doPaymentRequest(router, http.MethodPost, "/api/payments",
		`{"provider":"square","amount":10}`)

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
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Field != "provider" {
		t.Fatalf("expected provider field error, got %+v", body.Error.Errors)
	}
}

func TestGetPaymentHandlerMapsMissingPaymentToNotFound(t *testing.T) {
	svc := &fakePaymentService{getErr: paymentdomain.ErrPaymentNotFound}
	router := newPaymentRouter(svc, "client")

	resp := doPaymentRequest(router, http.MethodGet, "/api/payments/42", "")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestDeletePaymentRequiresAdminRole(t *testing.T) {
	svc := &fakePaymentService{}
	router := newPaymentRouter(svc, "client")

	resp := doPaymentRequest(router, http.MethodDelete, "/api/payments/42", "")

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
	if svc.deleteCalls != 0 {
		t.Fatal("expected delete not to reach the service without the admin role")
	}
}

func TestDeletePaymentAllowsAdmin(t *testing.T) {
	svc := &fakePaymentService{}
	router := newPaymentRouter(svc, "admin")

	resp := doPaymentRequest(router, http.MethodDelete, "/api/payments/42", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.deleteCalls != 1 {
		t.Fatalf("expected 1 delete call, got %d", svc.deleteCalls)
	}
	if svc.lastDelete.ID != "42" {
		t.Fatalf("expected id 42, got %q", svc.lastDelete.ID)
	}
}

func TestCapturePayPalHandlerMapsAlreadyCapturedToConflict(t *testing.T) {
	svc := &fakePaymentService{captureErr: paymentdomain.ErrAlreadyCaptured}
	router := newPaymentRouter(svc, "client")

	resp := doPaymentRequest(router, http.MethodPost, "/api/payments/paypal/capture/PAYID-1?payer_id=PAYER-1", "")

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
	if svc.captureCalls != 1 {
		t.Fatalf("expected 1 capture call, got %d", svc.captureCalls)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Error.Message != "payment already captured" {
		t.Fatalf("expected descriptive conflict message, got %q", body.Error.Message)
	}
}
