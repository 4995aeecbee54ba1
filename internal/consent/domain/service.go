package domain

import (
	"context"
	"errors"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
)

type ListConsentRequest struct {
	PageToken string
	PageSize  int32
	UserID    string
}

type ListConsentResponse struct {
	pagination.PageInfo
	Consents []Consent `json:"consents"`
}

type CreateConsentRequest struct {
	UserID    string
	Agreement string
}

type UpdateConsentRequest struct {
	ID        string
	Agreement string
}

type GetConsentRequest struct {
	ID string
}

type DeleteConsentRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateConsentRequest) (Consent, error)
	List(context.Context, ListConsentRequest) (ListConsentResponse, error)
	GetByID(context.Context, GetConsentRequest) (Consent, error)
	Update(context.Context, UpdateConsentRequest) (Consent, error)
	Delete(context.Context, DeleteConsentRequest) error
}

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidAgreement = errors.New("invalid_agreement")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidReference = errors.New("invalid_reference")
	ErrNotFound         = errors.New("consent_not_found")
)
