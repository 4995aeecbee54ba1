package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup removes rows seeded by integration or load tests, matched by
// prefix. Registered outside production only.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.Environment == "production" {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	like := prefix + "%"

	var userIDs []int64
	if err := s.db.WithContext(ctx).
		Table("users").
		Select("id").
		Where("email LIKE ?", like).
		Scan(&userIDs).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	if len(userIDs) > 0 {
		// Children first; each of these tables holds a foreign key to users.
		for _, stmt := range []string{
			`DELETE FROM consents WHERE user_id IN ?`,
			`DELETE FROM enrollments WHERE user_id IN ?`,
			`DELETE FROM appointments WHERE user_id IN ?`,
			`DELETE FROM payments WHERE user_id IN ?`,
			`DELETE FROM users WHERE id IN ?`,
		} {
			if err := s.db.WithContext(ctx).Exec(stmt, userIDs).Error; err != nil {
				AbortWithError(c, err)
				return
			}
		}
	}

	// Catalog rows seeded by tests carry the prefix in their titles.
	for _, stmt := range []string{
		`DELETE FROM trainings WHERE title LIKE ?`,
		`DELETE FROM services WHERE title LIKE ?`,
	} {
		if err := s.db.WithContext(ctx).Exec(stmt, like).Error; err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
