package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleClient = "client"
	RoleDoula  = "doula"
	RoleAdmin  = "admin"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FirstName    string       `gorm:"not null" json:"first_name"`
	MiddleName   *string      `json:"middle_name,omitempty"`
	LastName     string       `gorm:"not null" json:"last_name"`
	Email        string       `gorm:"not null" json:"email"`
	Role         string       `gorm:"not null;default:client" json:"role"`
	PasswordHash *string      `json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleDoula, RoleAdmin:
		return true
	}
	return false
}
