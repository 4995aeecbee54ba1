package service

import (
	"context"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/enrollment/domain"
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

	enrollmentrepo repository.Repository[domain.Enrollment]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("enrollment.service"),
		genID: p.GenID,

		enrollmentrepo: repository.ProvideStore[domain.Enrollment](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEnrollmentRequest) (domain.Enrollment, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.Enrollment{}, domain.ErrInvalidUser
	}
	trainingID, err := snowflake.ParseString(strings.TrimSpace(req.TrainingID))
	if err != nil || trainingID == 0 {
		return domain.Enrollment{}, domain.ErrInvalidTraining
	}

	status := strings.TrimSpace(req.PaymentStatus)
	if status == "" {
		status = domain.PaymentStatusPending
	}
	if !domain.ValidPaymentStatus(status) {
		return domain.Enrollment{}, domain.ErrInvalidPaymentStatus
	}

	now := time.Now().UTC()
	enrollment := domain.Enrollment{
		ID:               s.genID.Generate(),
		UserID:           userID,
		TrainingID:       trainingID,
		PaymentStatus:    status,
		PassedAssessment: req.PassedAssessment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.enrollmentrepo.Create(ctx, &enrollment); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.Enrollment{}, domain.ErrInvalidReference
		}
		return domain.Enrollment{}, err
	}

	return enrollment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEnrollmentRequest) (domain.ListEnrollmentResponse, error) {
	filter := &domain.Enrollment{}
	if req.UserID != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
		if err != nil || id == 0 {
			return domain.ListEnrollmentResponse{}, domain.ErrInvalidUser
		}
		filter.UserID = id
	}
	if req.TrainingID != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.TrainingID))
		if err != nil || id == 0 {
			return domain.ListEnrollmentResponse{}, domain.ErrInvalidTraining
		}
		filter.TrainingID = id
	}
	if req.PaymentStatus != "" {
		if !domain.ValidPaymentStatus(req.PaymentStatus) {
			return domain.ListEnrollmentResponse{}, domain.ErrInvalidPaymentStatus
		}
		filter.PaymentStatus = req.PaymentStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.enrollmentrepo.Find(ctx, filter,
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  int(pageSize),
		}),
		option.WithSortBy(option.QuerySortBy{Allow: map[string]bool{"created_at": true}}),
	)
	if err != nil {
		return domain.ListEnrollmentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(enrollment *domain.Enrollment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        enrollment.ID.String(),
			CreatedAt: enrollment.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	enrollments := make([]domain.Enrollment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		enrollments = append(enrollments, *item)
	}

	resp := domain.ListEnrollmentResponse{Enrollments: enrollments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEnrollmentRequest) (domain.Enrollment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Enrollment{}, err
	}

	item, err := s.enrollmentrepo.FindOne(ctx, &domain.Enrollment{ID: id})
	if err != nil {
		return domain.Enrollment{}, err
	}
	if item == nil {
		return domain.Enrollment{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEnrollmentRequest) (domain.Enrollment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Enrollment{}, err
	}

	item, err := s.enrollmentrepo.FindOne(ctx, &domain.Enrollment{ID: id})
	if err != nil {
		return domain.Enrollment{}, err
	}
	if item == nil {
		return domain.Enrollment{}, domain.ErrNotFound
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.PaymentStatus != nil {
		if !domain.ValidPaymentStatus(*req.PaymentStatus) {
			return domain.Enrollment{}, domain.ErrInvalidPaymentStatus
		}
		updates["payment_status"] = *req.PaymentStatus
		item.PaymentStatus = *req.PaymentStatus
	}
	if req.PassedAssessment != nil {
		updates["passed_assessment"] = *req.PassedAssessment
		item.PassedAssessment = req.PassedAssessment
	}

	if err := s.enrollmentrepo.Update(ctx, id.String(), updates); err != nil {
		return domain.Enrollment{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteEnrollmentRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.enrollmentrepo.FindOne(ctx, &domain.Enrollment{ID: id})
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.enrollmentrepo.Delete(ctx, id.String())
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
