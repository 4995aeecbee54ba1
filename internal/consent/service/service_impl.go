package service

import (
	"context"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/consent/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/option"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/IAmRubenNavarro/doula-life/pkg/repository"
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
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	consentrepo repository.Repository[domain.Consent]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("consent.service"),
		genID: p.GenID,

		consentrepo: repository.ProvideStore[domain.Consent](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateConsentRequest) (domain.Consent, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.Consent{}, domain.ErrInvalidUser
	}
	agreement := strings.TrimSpace(req.Agreement)
	if agreement == "" {
		return domain.Consent{}, domain.ErrInvalidAgreement
	}

	now := time.Now().UTC()
	consent := domain.Consent{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Agreement: agreement,
		SignedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.consentrepo.Create(ctx, &consent); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.Consent{}, domain.ErrInvalidReference
		}
		return domain.Consent{}, err
	}

	return consent, nil
}

func (s *Service) List(ctx context.Context, req domain.ListConsentRequest) (domain.ListConsentResponse, error) {
	filter := &domain.Consent{}
	if req.UserID != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
		if err != nil || id == 0 {
			return domain.ListConsentResponse{}, domain.ErrInvalidUser
		}
		filter.UserID = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.consentrepo.Find(ctx, filter,
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  int(pageSize),
		}),
		option.WithSortBy(option.QuerySortBy{Allow: map[string]bool{"created_at": true}}),
	)
	if err != nil {
		return domain.ListConsentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(consent *domain.Consent) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        consent.ID.String(),
			CreatedAt: consent.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	consents := make([]domain.Consent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		consents = append(consents, *item)
	}

	resp := domain.ListConsentResponse{Consents: consents}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetConsentRequest) (domain.Consent, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Consent{}, err
	}

	item, err := s.consentrepo.FindOne(ctx, &domain.Consent{ID: id})
	if err != nil {
		return domain.Consent{}, err
	}
	if item == nil {
		return domain.Consent{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateConsentRequest) (domain.Consent, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Consent{}, err
	}

	agreement := strings.TrimSpace(req.Agreement)
	if agreement == "" {
		return domain.Consent{}, domain.ErrInvalidAgreement
	}

	item, err := s.consentrepo.FindOne(ctx, &domain.Consent{ID: id})
	if err != nil {
		return domain.Consent{}, err
	}
	if item == nil {
		return domain.Consent{}, domain.ErrNotFound
	}

	updates := map[string]any{
		"agreement":  agreement,
		"updated_at": time.Now().UTC(),
	}
	if err := s.consentrepo.Update(ctx, id.String(), updates); err != nil {
		return domain.Consent{}, err
	}

	item.Agreement = agreement
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteConsentRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.consentrepo.FindOne(ctx, &domain.Consent{ID: id})
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.consentrepo.Delete(ctx, id.String())
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
