package domain

import (
	"context"
	"errors"
)

type SignupRequest struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Password   string
}

type LoginRequest struct {
	Email    string
	Password string
}

type Service interface {
	Signup(context.Context, SignupRequest) (Token, error)
	Login(context.Context, LoginRequest) (Token, error)
	Verify(ctx context.Context, token string) (Claims, error)
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrPasswordTooShort   = errors.New("password_too_short")
	ErrEmailTaken         = errors.New("email_already_registered")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrMissingSecret      = errors.New("auth_secret_missing")
)
