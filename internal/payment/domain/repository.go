package domain

import (
	"context"
	"time"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListPaymentFilter struct {
	UserID   string
	Status   string
	Provider string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByReference(ctx context.Context, db *gorm.DB, provider, reference string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListPaymentFilter, page pagination.Pagination) ([]*Payment, error)
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	// ApplyEvent folds a webhook-derived state into the payment row keyed by
	// (provider, external_reference) in one statement: insert when the row is
	// missing, otherwise update status only when the event is not older than
	// the last one applied.
	ApplyEvent(ctx context.Context, db *gorm.DB, payment *Payment) error

	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}
