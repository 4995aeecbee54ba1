package repository

import (
	"context"

	"github.com/IAmRubenNavarro/doula-life/internal/training/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/option"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, training *domain.Training) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO trainings (id, title, description, location, date, duration_minutes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		training.ID,
		training.Title,
		training.Description,
		training.Location,
		training.Date,
		training.DurationMinutes,
		training.CreatedAt,
		training.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Training, error) {
	var training domain.Training
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, description, location, date, duration_minutes, created_at, updated_at
		 FROM trainings WHERE id = ?`,
		id,
	).Scan(&training).Error
	if err != nil {
		return nil, err
	}
	if training.ID == 0 {
		return nil, nil
	}
	return &training, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, training *domain.Training) error {
	return db.WithContext(ctx).Exec(
		`UPDATE trainings
		 SET title = ?, description = ?, location = ?, date = ?, duration_minutes = ?, updated_at = ?
		 WHERE id = ?`,
		training.Title,
		training.Description,
		training.Location,
		training.Date,
		training.DurationMinutes,
		training.UpdatedAt,
		training.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM trainings WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTrainingFilter, page pagination.Pagination) ([]*domain.Training, error) {
	var trainings []*domain.Training
	stmt := db.WithContext(ctx).
		Model(&domain.Training{})
	if filter.From != nil {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "date",
			Operator: option.GTE,
			Value:    *filter.From,
		}).Apply(stmt)
	}
	if filter.To != nil {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "date",
			Operator: option.LTE,
			Value:    *filter.To,
		}).Apply(stmt)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&trainings).Error
	if err != nil {
		return nil, err
	}
	return trainings, nil
}
