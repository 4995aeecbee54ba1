package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Appointment struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID          *snowflake.ID `gorm:"index" json:"user_id,omitempty"`
	ServiceID       *snowflake.ID `json:"service_id,omitempty"`
	AppointmentTime *time.Time    `json:"appointment_time,omitempty"`
	DurationMinutes *int32        `json:"duration_minutes,omitempty"`
	StateID         *int32        `json:"state_id,omitempty"`
	Status          string        `gorm:"not null;default:scheduled" json:"status"`
	Notes           *string       `json:"notes,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
