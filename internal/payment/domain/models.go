package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	EventTypePaymentSucceeded = "payment_succeeded"
	EventTypePaymentFailed    = "payment_failed"
	EventTypeRefunded         = "refunded"
)

// Payment is the local record of a charge attempt against a provider.
// ExternalReference holds the provider object id (Stripe PaymentIntent id,
// PayPal payment id) once the provider has accepted the create call;
// (provider, external_reference) is unique so webhook deliveries always
// land on the same row.
type Payment struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey"`
	UserID            *snowflake.ID  `json:"user_id,omitempty" gorm:"index"`
	Amount            float64        `json:"amount" gorm:"type:numeric(10,2);not null"`
	Currency          string         `json:"currency" gorm:"type:text;not null;default:USD"`
	Provider          string         `json:"provider" gorm:"type:text;not null"`
	Status            string         `json:"status" gorm:"type:text;not null;default:pending"`
	ExternalReference *string        `json:"external_reference,omitempty" gorm:"type:text"`
	ServiceID         *snowflake.ID  `json:"service_id,omitempty"`
	AppointmentID     *snowflake.ID  `json:"appointment_id,omitempty"`
	TrainingID        *snowflake.ID  `json:"training_id,omitempty"`
	Metadata          datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	LastEventAt       *time.Time     `json:"last_event_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"not null"`
}

// EventRecord is one row of the webhook ledger. (provider, provider_event_id)
// is unique; the insert acting as the idempotency gate.
type EventRecord struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider          string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID   string         `json:"provider_event_id" gorm:"type:text;not null"`
	EventType         string         `json:"event_type" gorm:"type:text;not null"`
	ExternalReference *string        `json:"external_reference,omitempty" gorm:"type:text"`
	Payload           datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ReceivedAt        time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt       *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

// SubjectLinks are the optional domain rows a payment was taken for,
// recovered from the metadata the orchestrator stamped on the provider
// object at create time.
type SubjectLinks struct {
	UserID        *snowflake.ID
	ServiceID     *snowflake.ID
	AppointmentID *snowflake.ID
	TrainingID    *snowflake.ID
}

// PaymentEvent is the canonical event shape adapters normalize provider
// webhooks into before reconciliation. Amount is in major units.
type PaymentEvent struct {
	Provider          string
	ProviderEventID   string
	ExternalReference string
	Type              string
	Amount            float64
	Currency          string
	Links             SubjectLinks
	OccurredAt        time.Time
	RawPayload        []byte
}

func ValidProvider(provider string) bool {
	switch provider {
	case ProviderStripe, ProviderPayPal:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// EventStatus maps a canonical event type to the payment status it drives.
// Refund events carry no target status: they are recorded in the ledger but
// never move the payment row.
func EventStatus(eventType string) (string, bool) {
	switch eventType {
	case EventTypePaymentSucceeded:
		return StatusCompleted, true
	case EventTypePaymentFailed:
		return StatusFailed, true
	}
	return "", false
}

var statusRank = map[string]int{
	StatusPending:   0,
	StatusCompleted: 1,
	StatusFailed:    1,
}

// StatusRegresses reports whether a transition would rewind a payment that
// already reached a terminal state back to pending. Webhook ordering is
// decided by event time, not by this; it guards manual updates.
func StatusRegresses(from, to string) bool {
	return statusRank[to] < statusRank[from]
}
