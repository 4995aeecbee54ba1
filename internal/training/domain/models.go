package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Training struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	Description     *string      `json:"description,omitempty"`
	Location        *string      `json:"location,omitempty"`
	Date            time.Time    `gorm:"not null" json:"date"`
	DurationMinutes *int32       `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
