package domain

import (
	"context"
	"errors"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
)

type ListUserRequest struct {
	PageToken string
	PageSize  int32
	Role      string
	Email     string
}

type ListUserFilter struct {
	Role  string
	Email string
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Role       string
}

type GetUserRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	List(context.Context, ListUserRequest) (ListUserResponse, error)
	GetByID(context.Context, GetUserRequest) (User, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidID    = errors.New("invalid_id")
	ErrEmailTaken   = errors.New("email_already_registered")
	ErrNotFound     = errors.New("user_not_found")
)
