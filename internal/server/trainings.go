package server

import (
	"net/http"
	"strings"
	"time"

	trainingdomain "github.com/IAmRubenNavarro/doula-life/internal/training/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createTrainingRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	Date            *time.Time `json:"date"`
	DurationMinutes *int32     `json:"duration_minutes"`
}

type updateTrainingRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location"`
	Date            *time.Time `json:"date"`
	DurationMinutes *int32     `json:"duration_minutes"`
}

func (s *Server) CreateTraining(c *gin.Context) {
	var req createTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.trainingSvc.Create(c.Request.Context(), trainingdomain.CreateTrainingRequest{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Location:        strings.TrimSpace(req.Location),
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTrainings(c *gin.Context) {
	var query struct {
		pagination.Pagination
		From string `form:"from"`
		To   string `form:"to"`
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

	resp, err := s.trainingSvc.List(c.Request.Context(), trainingdomain.ListTrainingRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTrainingByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.trainingSvc.GetByID(c.Request.Context(), trainingdomain.GetTrainingRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTraining(c *gin.Context) {
	var req updateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.trainingSvc.Update(c.Request.Context(), trainingdomain.UpdateTrainingRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTraining(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.trainingSvc.Delete(c.Request.Context(), trainingdomain.DeleteTrainingRequest{
		ID: id,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
