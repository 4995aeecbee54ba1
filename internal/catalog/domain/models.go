package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TypeConsulting = "consulting"
	TypeTraining   = "training"
)

// CatalogService is a bookable offering. The table keeps the original
// "services" name even though the Go type is qualified to avoid clashing
// with the Service interface.
type CatalogService struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	Slug            string       `gorm:"not null" json:"slug"`
	Description     *string      `json:"description,omitempty"`
	ServiceType     string       `gorm:"not null" json:"service_type"`
	Price           *float64     `json:"price,omitempty"`
	DurationMinutes *int32       `json:"duration_minutes,omitempty"`
	IsActive        bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CatalogService) TableName() string {
	return "services"
}

func ValidServiceType(serviceType string) bool {
	switch serviceType {
	case TypeConsulting, TypeTraining:
		return true
	}
	return false
}
