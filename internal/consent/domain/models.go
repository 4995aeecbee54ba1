package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Consent struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Agreement string       `gorm:"not null" json:"agreement"`
	SignedAt  time.Time    `gorm:"not null" json:"signed_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}
