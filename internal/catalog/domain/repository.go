package domain

import (
	"context"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, svc *CatalogService) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CatalogService, error)
	Update(ctx context.Context, db *gorm.DB, svc *CatalogService) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListServiceFilter, page pagination.Pagination) ([]*CatalogService, error)
}
