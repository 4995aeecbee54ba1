package domain

import (
	"context"
	"errors"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
)

type ListEnrollmentRequest struct {
	PageToken     string
	PageSize      int32
	UserID        string
	TrainingID    string
	PaymentStatus string
}

type ListEnrollmentResponse struct {
	pagination.PageInfo
	Enrollments []Enrollment `json:"enrollments"`
}

type CreateEnrollmentRequest struct {
	UserID           string
	TrainingID       string
	PaymentStatus    string
	PassedAssessment *bool
}

type UpdateEnrollmentRequest struct {
	ID               string
	PaymentStatus    *string
	PassedAssessment *bool
}

type GetEnrollmentRequest struct {
	ID string
}

type DeleteEnrollmentRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateEnrollmentRequest) (Enrollment, error)
	List(context.Context, ListEnrollmentRequest) (ListEnrollmentResponse, error)
	GetByID(context.Context, GetEnrollmentRequest) (Enrollment, error)
	Update(context.Context, UpdateEnrollmentRequest) (Enrollment, error)
	Delete(context.Context, DeleteEnrollmentRequest) error
}

var (
	ErrInvalidUser          = errors.New("invalid_user")
	ErrInvalidTraining      = errors.New("invalid_training")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidReference     = errors.New("invalid_reference")
	ErrNotFound             = errors.New("enrollment_not_found")
)
