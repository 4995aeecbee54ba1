package server

import (
	"net/http"
	"strings"

	catalogdomain "github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createServiceRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ServiceType     string   `json:"service_type"`
	Price           *float64 `json:"price"`
	DurationMinutes *int32   `json:"duration_minutes"`
	IsActive        *bool    `json:"is_active"`
}

type updateServiceRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	ServiceType     *string  `json:"service_type"`
	Price           *float64 `json:"price"`
	DurationMinutes *int32   `json:"duration_minutes"`
	IsActive        *bool    `json:"is_active"`
}

func (s *Server) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateServiceRequest{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		ServiceType:     strings.TrimSpace(req.ServiceType),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListServices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ServiceType string `form:"service_type"`
		ActiveOnly  string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeOnly, err := parseOptionalBool(query.ActiveOnly)
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListServiceRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		ServiceType: strings.TrimSpace(query.ServiceType),
		ActiveOnly:  activeOnly != nil && *activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetServiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), catalogdomain.GetServiceRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateService(c *gin.Context) {
	var req updateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Update(c.Request.Context(), catalogdomain.UpdateServiceRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Title:           req.Title,
		Description:     req.Description,
		ServiceType:     req.ServiceType,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteService(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.catalogSvc.Delete(c.Request.Context(), catalogdomain.DeleteServiceRequest{
		ID: id,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
