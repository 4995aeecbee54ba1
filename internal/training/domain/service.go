package domain

import (
	"context"
	"errors"
	"time"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
)

type ListTrainingRequest struct {
	PageToken string
	PageSize  int32
	From      *time.Time
	To        *time.Time
}

type ListTrainingFilter struct {
	From *time.Time
	To   *time.Time
}

type ListTrainingResponse struct {
	pagination.PageInfo
	Trainings []Training `json:"trainings"`
}

type CreateTrainingRequest struct {
	Title           string
	Description     string
	Location        string
	Date            *time.Time
	DurationMinutes *int32
}

type UpdateTrainingRequest struct {
	ID              string
	Title           *string
	Description     *string
	Location        *string
	Date            *time.Time
	DurationMinutes *int32
}

type GetTrainingRequest struct {
	ID string
}

type DeleteTrainingRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateTrainingRequest) (Training, error)
	List(context.Context, ListTrainingRequest) (ListTrainingResponse, error)
	GetByID(context.Context, GetTrainingRequest) (Training, error)
	Update(context.Context, UpdateTrainingRequest) (Training, error)
	Delete(context.Context, DeleteTrainingRequest) error
}

var (
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidDate  = errors.New("invalid_date")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("training_not_found")
)
