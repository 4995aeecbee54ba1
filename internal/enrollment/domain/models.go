package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusWaived  = "waived"
)

// Enrollment links a user to a training session. CreatedAt doubles as
// the enrollment timestamp in API responses.
type Enrollment struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID `gorm:"not null;index" json:"user_id"`
	TrainingID       snowflake.ID `gorm:"not null;index" json:"training_id"`
	PaymentStatus    string       `gorm:"not null;default:pending" json:"payment_status"`
	PassedAssessment *bool        `json:"passed_assessment,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"enrolled_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusWaived:
		return true
	}
	return false
}
