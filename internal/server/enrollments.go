package server

import (
	"net/http"
	"strings"

	enrollmentdomain "github.com/IAmRubenNavarro/doula-life/internal/enrollment/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createEnrollmentRequest struct {
	UserID           string `json:"user_id"`
	TrainingID       string `json:"training_id"`
	PaymentStatus    string `json:"payment_status"`
	PassedAssessment *bool  `json:"passed_assessment"`
}

type updateEnrollmentRequest struct {
	PaymentStatus    *string `json:"payment_status"`
	PassedAssessment *bool   `json:"passed_assessment"`
}

func (s *Server) CreateEnrollment(c *gin.Context) {
	var req createEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.Create(c.Request.Context(), enrollmentdomain.CreateEnrollmentRequest{
		UserID:           strings.TrimSpace(req.UserID),
		TrainingID:       strings.TrimSpace(req.TrainingID),
		PaymentStatus:    strings.TrimSpace(req.PaymentStatus),
		PassedAssessment: req.PassedAssessment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEnrollments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UserID        string `form:"user_id"`
		TrainingID    string `form:"training_id"`
		PaymentStatus string `form:"payment_status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.List(c.Request.Context(), enrollmentdomain.ListEnrollmentRequest{
		PageToken:     query.PageToken,
		PageSize:      int32(query.PageSize),
		UserID:        strings.TrimSpace(query.UserID),
		TrainingID:    strings.TrimSpace(query.TrainingID),
		PaymentStatus: strings.TrimSpace(query.PaymentStatus),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEnrollmentByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.enrollmentSvc.GetByID(c.Request.Context(), enrollmentdomain.GetEnrollmentRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEnrollment(c *gin.Context) {
	var req updateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.Update(c.Request.Context(), enrollmentdomain.UpdateEnrollmentRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		PaymentStatus:    req.PaymentStatus,
		PassedAssessment: req.PassedAssessment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteEnrollment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.enrollmentSvc.Delete(c.Request.Context(), enrollmentdomain.DeleteEnrollmentRequest{
		ID: id,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
