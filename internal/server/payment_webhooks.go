package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

// HandlePaymentWebhook feeds a provider callback into the reconciler. The raw
// body is handed over untouched because both providers sign the exact byte
// sequence they POST.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	provider := strings.TrimSpace(c.Param("provider"))

	err = s.webhookSvc.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	// A redelivered event was already applied; acknowledging it is what stops
	// the provider from retrying forever.
	if err != nil && !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
