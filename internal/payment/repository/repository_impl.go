package repository

import (
	"context"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/option"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert writes the create-time pending row. A concurrent webhook may have
// lazily created the row for the same (provider, external_reference) first;
// in that case nothing is written and false is returned.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, user_id, amount, currency, provider, status, external_reference,
			service_id, appointment_id, training_id, metadata, last_event_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, external_reference) WHERE external_reference IS NOT NULL
		DO NOTHING`,
		payment.ID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Provider,
		payment.Status,
		payment.ExternalReference,
		payment.ServiceID,
		payment.AppointmentID,
		payment.TrainingID,
		payment.Metadata,
		payment.LastEventAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, currency, provider, status, external_reference,
			service_id, appointment_id, training_id, metadata, last_event_at,
			created_at, updated_at
		 FROM payments WHERE id = ?`,
		id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, provider string, reference string) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, currency, provider, status, external_reference,
			service_id, appointment_id, training_id, metadata, last_event_at,
			created_at, updated_at
		 FROM payments WHERE provider = ? AND external_reference = ?
		 LIMIT 1`,
		provider,
		reference,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter, page pagination.Pagination) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	stmt := db.WithContext(ctx).
		Model(&domain.Payment{})
	if filter.UserID != "" {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Provider != "" {
		stmt = stmt.Where("provider = ?", filter.Provider)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?, service_id = ?, appointment_id = ?, training_id = ?, updated_at = ?
		 WHERE id = ?`,
		payment.Status,
		payment.ServiceID,
		payment.AppointmentID,
		payment.TrainingID,
		payment.UpdatedAt,
		payment.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM payments WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ApplyEvent is the reconciliation write: one statement that creates the
// row when the provider reference was never recorded locally, or advances
// its status when it was. The guard on last_event_at makes re-deliveries
// and out-of-order deliveries collapse to last-event-wins.
func (r *repo) ApplyEvent(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (
			id, user_id, amount, currency, provider, status, external_reference,
			service_id, appointment_id, training_id, metadata, last_event_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, external_reference) WHERE external_reference IS NOT NULL
		DO UPDATE SET
			status = excluded.status,
			last_event_at = excluded.last_event_at,
			updated_at = excluded.updated_at
		WHERE payments.last_event_at IS NULL
		   OR payments.last_event_at <= excluded.last_event_at`,
		payment.ID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Provider,
		payment.Status,
		payment.ExternalReference,
		payment.ServiceID,
		payment.AppointmentID,
		payment.TrainingID,
		payment.Metadata,
		payment.LastEventAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EventRecord) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payment_events (
			id, provider, provider_event_id, event_type, external_reference,
			payload, received_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_event_id) DO NOTHING`,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.EventType,
		event.ExternalReference,
		event.Payload,
		event.ReceivedAt,
		event.ProcessedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindEvent(ctx context.Context, db *gorm.DB, provider string, providerEventID string) (*domain.EventRecord, error) {
	var event domain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, provider_event_id, event_type, external_reference,
			payload, received_at, processed_at
		 FROM payment_events
		 WHERE provider = ? AND provider_event_id = ?
		 LIMIT 1`,
		provider,
		providerEventID,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_events
		 SET processed_at = ?
		 WHERE id = ?`,
		processedAt,
		id,
	).Error
}
