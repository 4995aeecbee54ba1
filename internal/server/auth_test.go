package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "github.com/IAmRubenNavarro/doula-life/internal/auth/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type fakeAuthService struct {
	signupCalls int
	loginCalls  int
	lastSignup  authdomain.SignupRequest
	lastLogin   authdomain.LoginRequest

	token     authdomain.Token
	claims    authdomain.Claims
	signupErr error
	loginErr  error
	verifyErr error
}

func (f *fakeAuthService) Signup(ctx context.Context, req authdomain.SignupRequest) (authdomain.Token, error) {
	f.signupCalls++
	f.lastSignup = req
	_ = ctx
	return f.token, f.signupErr
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.Token, error) {
	f.loginCalls++
	f.lastLogin = req
	_ = ctx
	return f.token, f.loginErr
}

func (f *fakeAuthService) Verify(ctx context.Context, token string) (authdomain.Claims, error) {
	_ = ctx
	_ = token
	return f.claims, f.verifyErr
}

func newAuthRouter(svc authdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{authsvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/signup", srv.Signup)
	router.POST("/auth/login", srv.Login)
	router.GET("/auth/protected", srv.AuthRequired(), srv.Protected)
	return router
}

func TestSignupHandlerReturnsToken(t *testing.T) {
	svc := &fakeAuthService{token: authdomain.Token{AccessToken: "jwt-token", TokenType: "bearer"}}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"first_name":" Ada ","last_name":"Lovelace","email":" ada@example.com ","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.signupCalls != 1 {
		t.Fatalf("expected 1 signup call, got %d", svc.signupCalls)
	}
	if svc.lastSignup.FirstName != "Ada" || svc.lastSignup.Email != "ada@example.com" {
		t.Fatalf("expected trimmed fields, got %+v", svc.lastSignup)
	}

	var token authdomain.Token
	if err := json.Unmarshal(resp.Body.Bytes(), &token); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if token.AccessToken != "jwt-token" || token.TokenType != "bearer" {
		t.Fatalf("unexpected token payload: %+v", token)
	}
}

func TestSignupHandlerRejectsMalformedBody(t *testing.T) {
	svc := &fakeAuthService{}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.signupCalls != 0 {
		t.Fatal("expected signup service not to be called on malformed body")
	}
}

func TestSignupHandlerMapsEmailTakenToConflict(t *testing.T) {
	svc := &fakeAuthService{signupErr: authdomain.ErrEmailTaken}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"first_name":"Ada","email":"ada@example.com","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Error.Type != "conflict" {
		t.Fatalf("expected conflict, got %q", body.Error.Type)
	}
}

func TestLoginHandlerMapsInvalidCredentialsToUnauthorized(t *testing.T) {
	svc := &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"ada@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if svc.loginCalls != 1 {
		t.Fatalf("expected 1 login call, got %d", svc.loginCalls)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	svc := &fakeAuthService{}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/protected", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredRejectsNonBearerScheme(t *testing.T) {
	svc := &fakeAuthService{}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/protected", nil)
	req.Header.Set("Authorization", "Basic YWRhOnNlY3JldA==")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestProtectedEchoesVerifiedIdentity(t *testing.T) {
	svc := &fakeAuthService{claims: authdomain.Claims{UserID: snowflake.ID(42), Role: "member"}}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Message string `json:"message"`
		User    struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Message != "Access granted" {
		t.Fatalf("expected access granted message, got %q", body.Message)
	}
	if body.User.UserID != "42" || body.User.Role != "member" {
		t.Fatalf("unexpected identity payload: %+v", body.User)
	}
}

func TestAuthRequiredMapsExpiredToken(t *testing.T) {
	svc := &fakeAuthService{verifyErr: authdomain.ErrTokenExpired}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/protected", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}
