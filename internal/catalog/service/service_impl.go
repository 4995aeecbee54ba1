package service

import (
	"context"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequest) (domain.CatalogService, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.CatalogService{}, domain.ErrInvalidTitle
	}
	if !domain.ValidServiceType(req.ServiceType) {
		return domain.CatalogService{}, domain.ErrInvalidServiceType
	}
	if req.Price != nil && *req.Price < 0 {
		return domain.CatalogService{}, domain.ErrInvalidPrice
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	svc := domain.CatalogService{
		ID:              s.genID.Generate(),
		Title:           title,
		Slug:            slug.Make(title),
		ServiceType:     req.ServiceType,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        isActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		svc.Description = &desc
	}

	if err := s.repo.Insert(ctx, s.db, &svc); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.CatalogService{}, domain.ErrSlugTaken
		}
		return domain.CatalogService{}, err
	}

	return svc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListServiceRequest) (domain.ListServiceResponse, error) {
	if req.ServiceType != "" && !domain.ValidServiceType(req.ServiceType) {
		return domain.ListServiceResponse{}, domain.ErrInvalidServiceType
	}

	filter := domain.ListServiceFilter{
		ServiceType: req.ServiceType,
		ActiveOnly:  req.ActiveOnly,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListServiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(svc *domain.CatalogService) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        svc.ID.String(),
			CreatedAt: svc.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	services := make([]domain.CatalogService, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		services = append(services, *item)
	}

	resp := domain.ListServiceResponse{Services: services}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetServiceRequest) (domain.CatalogService, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CatalogService{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CatalogService{}, err
	}
	if item == nil {
		return domain.CatalogService{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateServiceRequest) (domain.CatalogService, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.CatalogService{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CatalogService{}, err
	}
	if item == nil {
		return domain.CatalogService{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.CatalogService{}, domain.ErrInvalidTitle
		}
		item.Title = title
		item.Slug = slug.Make(title)
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			item.Description = &desc
		} else {
			item.Description = nil
		}
	}
	if req.ServiceType != nil {
		if !domain.ValidServiceType(*req.ServiceType) {
			return domain.CatalogService{}, domain.ErrInvalidServiceType
		}
		item.ServiceType = *req.ServiceType
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.CatalogService{}, domain.ErrInvalidPrice
		}
		item.Price = req.Price
	}
	if req.DurationMinutes != nil {
		item.DurationMinutes = req.DurationMinutes
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.CatalogService{}, domain.ErrSlugTaken
		}
		return domain.CatalogService{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteServiceRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
