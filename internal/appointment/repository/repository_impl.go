package repository

import (
	"context"

	"github.com/IAmRubenNavarro/doula-life/internal/appointment/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/option"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, appt *domain.Appointment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO appointments (id, user_id, service_id, appointment_time, duration_minutes, state_id, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.ID,
		appt.UserID,
		appt.ServiceID,
		appt.AppointmentTime,
		appt.DurationMinutes,
		appt.StateID,
		appt.Status,
		appt.Notes,
		appt.CreatedAt,
		appt.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Appointment, error) {
	var appt domain.Appointment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, service_id, appointment_time, duration_minutes, state_id, status, notes, created_at, updated_at
		 FROM appointments WHERE id = ?`,
		id,
	).Scan(&appt).Error
	if err != nil {
		return nil, err
	}
	if appt.ID == 0 {
		return nil, nil
	}
	return &appt, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, appt *domain.Appointment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE appointments
		 SET user_id = ?, service_id = ?, appointment_time = ?, duration_minutes = ?, state_id = ?, status = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		appt.UserID,
		appt.ServiceID,
		appt.AppointmentTime,
		appt.DurationMinutes,
		appt.StateID,
		appt.Status,
		appt.Notes,
		appt.UpdatedAt,
		appt.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM appointments WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListAppointmentFilter, page pagination.Pagination) ([]*domain.Appointment, error) {
	var appts []*domain.Appointment
	stmt := db.WithContext(ctx).
		Model(&domain.Appointment{})
	if filter.UserID != "" {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "appointment_time",
			Operator: option.GTE,
			Value:    *filter.From,
		}).Apply(stmt)
	}
	if filter.To != nil {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "appointment_time",
			Operator: option.LTE,
			Value:    *filter.To,
		}).Apply(stmt)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}
