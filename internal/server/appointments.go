package server

import (
	"net/http"
	"strings"
	"time"

	appointmentdomain "github.com/IAmRubenNavarro/doula-life/internal/appointment/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createAppointmentRequest struct {
	UserID          string     `json:"user_id"`
	ServiceID       string     `json:"service_id"`
	AppointmentTime *time.Time `json:"appointment_time"`
	DurationMinutes *int32     `json:"duration_minutes"`
	StateID         *int32     `json:"state_id"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes"`
}

type updateAppointmentRequest struct {
	UserID          *string    `json:"user_id"`
	ServiceID       *string    `json:"service_id"`
	AppointmentTime *time.Time `json:"appointment_time"`
	DurationMinutes *int32     `json:"duration_minutes"`
	StateID         *int32     `json:"state_id"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes"`
}

func (s *Server) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Create(c.Request.Context(), appointmentdomain.CreateAppointmentRequest{
		UserID:          strings.TrimSpace(req.UserID),
		ServiceID:       strings.TrimSpace(req.ServiceID),
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		StateID:         req.StateID,
		Status:          strings.TrimSpace(req.Status),
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAppointments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UserID string `form:"user_id"`
		Status string `form:"status"`
		From   string `form:"from"`
		To     string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.appointmentSvc.List(c.Request.Context(), appointmentdomain.ListAppointmentRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		UserID:    strings.TrimSpace(query.UserID),
		Status:    strings.TrimSpace(query.Status),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAppointmentByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.appointmentSvc.GetByID(c.Request.Context(), appointmentdomain.GetAppointmentRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAppointment(c *gin.Context) {
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Update(c.Request.Context(), appointmentdomain.UpdateAppointmentRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		UserID:          req.UserID,
		ServiceID:       req.ServiceID,
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		StateID:         req.StateID,
		Status:          req.Status,
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAppointment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.appointmentSvc.Delete(c.Request.Context(), appointmentdomain.DeleteAppointmentRequest{
		ID: id,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
