package domain

import (
	"context"
	"errors"
	"time"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
)

type ListAppointmentRequest struct {
	PageToken string
	PageSize  int32
	UserID    string
	Status    string
	From      *time.Time
	To        *time.Time
}

type ListAppointmentFilter struct {
	UserID string
	Status string
	From   *time.Time
	To     *time.Time
}

type ListAppointmentResponse struct {
	pagination.PageInfo
	Appointments []Appointment `json:"appointments"`
}

type CreateAppointmentRequest struct {
	UserID          string
	ServiceID       string
	AppointmentTime *time.Time
	DurationMinutes *int32
	StateID         *int32
	Status          string
	Notes           string
}

type UpdateAppointmentRequest struct {
	ID              string
	UserID          *string
	ServiceID       *string
	AppointmentTime *time.Time
	DurationMinutes *int32
	StateID         *int32
	Status          *string
	Notes           *string
}

type GetAppointmentRequest struct {
	ID string
}

type DeleteAppointmentRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateAppointmentRequest) (Appointment, error)
	List(context.Context, ListAppointmentRequest) (ListAppointmentResponse, error)
	GetByID(context.Context, GetAppointmentRequest) (Appointment, error)
	Update(context.Context, UpdateAppointmentRequest) (Appointment, error)
	Delete(context.Context, DeleteAppointmentRequest) error
}

var (
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidReference = errors.New("invalid_reference")
	ErrNotFound         = errors.New("appointment_not_found")
)
