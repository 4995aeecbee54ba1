package service

import (
	"context"
	"strings"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/appointment/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db"
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
		log:   p.Log.Named("appointment.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAppointmentRequest) (domain.Appointment, error) {
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusScheduled
	}
	if !domain.ValidStatus(status) {
		return domain.Appointment{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	appt := domain.Appointment{
		ID:              s.genID.Generate(),
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		StateID:         req.StateID,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if req.UserID != "" {
		id, err := s.parseID(req.UserID)
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.UserID = &id
	}
	if req.ServiceID != "" {
		id, err := s.parseID(req.ServiceID)
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ServiceID = &id
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		appt.Notes = &notes
	}

	if err := s.repo.Insert(ctx, s.db, &appt); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.Appointment{}, domain.ErrInvalidReference
		}
		return domain.Appointment{}, err
	}

	return appt, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAppointmentRequest) (domain.ListAppointmentResponse, error) {
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return domain.ListAppointmentResponse{}, domain.ErrInvalidStatus
	}

	filter := domain.ListAppointmentFilter{
		Status: req.Status,
		From:   req.From,
		To:     req.To,
	}
	if req.UserID != "" {
		id, err := s.parseID(req.UserID)
		if err != nil {
			return domain.ListAppointmentResponse{}, err
		}
		filter.UserID = id.String()
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
		return domain.ListAppointmentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(appt *domain.Appointment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        appt.ID.String(),
			CreatedAt: appt.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	appts := make([]domain.Appointment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		appts = append(appts, *item)
	}

	resp := domain.ListAppointmentResponse{Appointments: appts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAppointmentRequest) (domain.Appointment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if item == nil {
		return domain.Appointment{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAppointmentRequest) (domain.Appointment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if item == nil {
		return domain.Appointment{}, domain.ErrNotFound
	}

	if req.UserID != nil {
		userID, err := s.parseID(*req.UserID)
		if err != nil {
			return domain.Appointment{}, err
		}
		item.UserID = &userID
	}
	if req.ServiceID != nil {
		serviceID, err := s.parseID(*req.ServiceID)
		if err != nil {
			return domain.Appointment{}, err
		}
		item.ServiceID = &serviceID
	}
	if req.AppointmentTime != nil {
		item.AppointmentTime = req.AppointmentTime
	}
	if req.DurationMinutes != nil {
		item.DurationMinutes = req.DurationMinutes
	}
	if req.StateID != nil {
		item.StateID = req.StateID
	}
	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return domain.Appointment{}, domain.ErrInvalidStatus
		}
		item.Status = *req.Status
	}
	if req.Notes != nil {
		if notes := strings.TrimSpace(*req.Notes); notes != "" {
			item.Notes = &notes
		} else {
			item.Notes = nil
		}
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.Appointment{}, domain.ErrInvalidReference
		}
		return domain.Appointment{}, err
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteAppointmentRequest) error {
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
