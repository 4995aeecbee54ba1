package service

import (
	"context"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/training/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
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
		log:   p.Log.Named("training.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTrainingRequest) (domain.Training, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Training{}, domain.ErrInvalidTitle
	}
	if req.Date == nil || req.Date.IsZero() {
		return domain.Training{}, domain.ErrInvalidDate
	}

	now := time.Now().UTC()
	training := domain.Training{
		ID:              s.genID.Generate(),
		Title:           title,
		Date:            req.Date.UTC(),
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		training.Description = &desc
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		training.Location = &loc
	}

	if err := s.repo.Insert(ctx, s.db, &training); err != nil {
		return domain.Training{}, err
	}

	return training, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTrainingRequest) (domain.ListTrainingResponse, error) {
	filter := domain.ListTrainingFilter{
		From: req.From,
		To:   req.To,
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
		return domain.ListTrainingResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(training *domain.Training) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        training.ID.String(),
			CreatedAt: training.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	trainings := make([]domain.Training, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		trainings = append(trainings, *item)
	}

	resp := domain.ListTrainingResponse{Trainings: trainings}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTrainingRequest) (domain.Training, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Training{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Training{}, err
	}
	if item == nil {
		return domain.Training{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTrainingRequest) (domain.Training, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Training{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Training{}, err
	}
	if item == nil {
		return domain.Training{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Training{}, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			item.Description = &desc
		} else {
			item.Description = nil
		}
	}
	if req.Location != nil {
		if loc := strings.TrimSpace(*req.Location); loc != "" {
			item.Location = &loc
		} else {
			item.Location = nil
		}
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return domain.Training{}, domain.ErrInvalidDate
		}
		item.Date = req.Date.UTC()
	}
	if req.DurationMinutes != nil {
		item.DurationMinutes = req.DurationMinutes
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Training{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteTrainingRequest) error {
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
