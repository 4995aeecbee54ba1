package server

import (
	"net/http"
	"strings"

	consentdomain "github.com/IAmRubenNavarro/doula-life/internal/consent/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createConsentRequest struct {
	UserID    string `json:"user_id"`
	Agreement string `json:"agreement"`
}

type updateConsentRequest struct {
	Agreement string `json:"agreement"`
}

func (s *Server) CreateConsent(c *gin.Context) {
	var req createConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.consentSvc.Create(c.Request.Context(), consentdomain.CreateConsentRequest{
		UserID:    strings.TrimSpace(req.UserID),
		Agreement: strings.TrimSpace(req.Agreement),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListConsents(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UserID string `form:"user_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.consentSvc.List(c.Request.Context(), consentdomain.ListConsentRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		UserID:    strings.TrimSpace(query.UserID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetConsentByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.consentSvc.GetByID(c.Request.Context(), consentdomain.GetConsentRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateConsent(c *gin.Context) {
	var req updateConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.consentSvc.Update(c.Request.Context(), consentdomain.UpdateConsentRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		Agreement: strings.TrimSpace(req.Agreement),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteConsent(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.consentSvc.Delete(c.Request.Context(), consentdomain.DeleteConsentRequest{
		ID: id,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
