package repository

import (
	"context"

	"github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/option"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, svc *domain.CatalogService) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO services (id, title, slug, description, service_type, price, duration_minutes, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID,
		svc.Title,
		svc.Slug,
		svc.Description,
		svc.ServiceType,
		svc.Price,
		svc.DurationMinutes,
		svc.IsActive,
		svc.CreatedAt,
		svc.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CatalogService, error) {
	var svc domain.CatalogService
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, slug, description, service_type, price, duration_minutes, is_active, created_at, updated_at
		 FROM services WHERE id = ?`,
		id,
	).Scan(&svc).Error
	if err != nil {
		return nil, err
	}
	if svc.ID == 0 {
		return nil, nil
	}
	return &svc, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, svc *domain.CatalogService) error {
	return db.WithContext(ctx).Exec(
		`UPDATE services
		 SET title = ?, slug = ?, description = ?, service_type = ?, price = ?, duration_minutes = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		svc.Title,
		svc.Slug,
		svc.Description,
		svc.ServiceType,
		svc.Price,
		svc.DurationMinutes,
		svc.IsActive,
		svc.UpdatedAt,
		svc.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM services WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListServiceFilter, page pagination.Pagination) ([]*domain.CatalogService, error) {
	var services []*domain.CatalogService
	stmt := db.WithContext(ctx).
		Model(&domain.CatalogService{})
	if filter.ServiceType != "" {
		stmt = stmt.Where("service_type = ?", filter.ServiceType)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
