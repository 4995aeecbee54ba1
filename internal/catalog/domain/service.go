package domain

import (
	"context"
	"errors"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
)

type ListServiceRequest struct {
	PageToken   string
	PageSize    int32
	ServiceType string
	ActiveOnly  bool
}

type ListServiceFilter struct {
	ServiceType string
	ActiveOnly  bool
}

type ListServiceResponse struct {
	pagination.PageInfo
	Services []CatalogService `json:"services"`
}

type CreateServiceRequest struct {
	Title           string
	Description     string
	ServiceType     string
	Price           *float64
	DurationMinutes *int32
	IsActive        *bool
}

type UpdateServiceRequest struct {
	ID              string
	Title           *string
	Description     *string
	ServiceType     *string
	Price           *float64
	DurationMinutes *int32
	IsActive        *bool
}

type GetServiceRequest struct {
	ID string
}

type DeleteServiceRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateServiceRequest) (CatalogService, error)
	List(context.Context, ListServiceRequest) (ListServiceResponse, error)
	GetByID(context.Context, GetServiceRequest) (CatalogService, error)
	Update(context.Context, UpdateServiceRequest) (CatalogService, error)
	Delete(context.Context, DeleteServiceRequest) error
}

var (
	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidServiceType = errors.New("invalid_service_type")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidID          = errors.New("invalid_id")
	ErrSlugTaken          = errors.New("slug_already_exists")
	ErrNotFound           = errors.New("service_not_found")
)
