package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/providers/pdf"
	userdomain "github.com/IAmRubenNavarro/doula-life/internal/user/domain"
	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createPaymentRequest struct {
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Provider      string  `json:"provider"`
	ServiceID     string  `json:"service_id"`
	AppointmentID string  `json:"appointment_id"`
	TrainingID    string  `json:"training_id"`
	Description   string  `json:"description"`
	ReturnURL     string  `json:"return_url"`
	CancelURL     string  `json:"cancel_url"`
}

type updatePaymentRequest struct {
	Status        *string `json:"status"`
	ServiceID     *string `json:"service_id"`
	AppointmentID *string `json:"appointment_id"`
	TrainingID    *string `json:"training_id"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreatePaymentRequest{
		UserID:        strings.TrimSpace(req.UserID),
		Amount:        req.Amount,
		Currency:      strings.TrimSpace(req.Currency),
		Provider:      strings.TrimSpace(req.Provider),
		ServiceID:     strings.TrimSpace(req.ServiceID),
		AppointmentID: strings.TrimSpace(req.AppointmentID),
		TrainingID:    strings.TrimSpace(req.TrainingID),
		Description:   strings.TrimSpace(req.Description),
		ReturnURL:     strings.TrimSpace(req.ReturnURL),
		CancelURL:     strings.TrimSpace(req.CancelURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CapturePayPalPayment executes an approved PayPal payment. payment_id is
// the PayPal payment reference from the approval redirect, payer_id comes
// back as a query parameter on the return URL.
func (s *Server) CapturePayPalPayment(c *gin.Context) {
	resp, err := s.paymentSvc.CapturePayPal(c.Request.Context(), paymentdomain.CapturePaymentRequest{
		PaymentID: strings.TrimSpace(c.Param("payment_id")),
		PayerID:   strings.TrimSpace(c.Query("payer_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UserID   string `form:"user_id"`
		Status   string `form:"status"`
		Provider string `form:"provider"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		UserID:    strings.TrimSpace(query.UserID),
		Status:    strings.TrimSpace(query.Status),
		Provider:  strings.TrimSpace(query.Provider),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), paymentdomain.GetPaymentRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Update(c.Request.Context(), paymentdomain.UpdatePaymentRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		Status:        req.Status,
		ServiceID:     req.ServiceID,
		AppointmentID: req.AppointmentID,
		TrainingID:    req.TrainingID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DeletePayment removes a payment record. Deletion is an administrative
// correction, not part of any payment flow, so it is limited to admins.
func (s *Server) DeletePayment(c *gin.Context) {
	if c.GetString(contextRoleKey) != userdomain.RoleAdmin {
		AbortWithError(c, ErrForbidden)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := s.paymentSvc.Delete(c.Request.Context(), paymentdomain.DeletePaymentRequest{
		ID: id,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// RenderPaymentReceipt returns a PDF receipt for a completed payment.
func (s *Server) RenderPaymentReceipt(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	payment, err := s.paymentSvc.GetByID(c.Request.Context(), paymentdomain.GetPaymentRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if payment.Status != paymentdomain.StatusCompleted {
		AbortWithError(c, newValidationError("status", "payment_not_completed", "receipts are available for completed payments only"))
		return
	}

	receipt := s.buildReceiptData(c, payment)
	doc, err := s.receipts.RenderReceipt(c.Request.Context(), receipt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordReceiptRendered(c.Request.Context(), payment.Provider)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", payment.ID.String()))
	c.Data(http.StatusOK, "application/pdf", body)
}

func (s *Server) buildReceiptData(c *gin.Context, payment paymentdomain.Payment) pdf.ReceiptData {
	branding := s.paymentsCfg.Get().Receipt

	paidOn := payment.UpdatedAt
	if payment.LastEventAt != nil {
		paidOn = *payment.LastEventAt
	}

	reference := ""
	if payment.ExternalReference != nil {
		reference = *payment.ExternalReference
	}

	data := pdf.ReceiptData{
		BusinessName:  branding.BusinessName,
		SupportEmail:  branding.SupportEmail,
		FooterNote:    branding.FooterNote,
		ReceiptNumber: payment.ID.String(),
		PaidOn:        paidOn.Format("Jan 2, 2006"),
		Provider:      payment.Provider,
		Reference:     reference,
		Description:   receiptDescription(payment),
		Amount:        fmt.Sprintf("%.2f", payment.Amount),
		Currency:      payment.Currency,
	}

	// Billing details are best effort; a deleted user must not block the
	// receipt download.
	if payment.UserID != nil {
		if user, err := s.usersvc.GetByID(c.Request.Context(), userdomain.GetUserRequest{
			ID: payment.UserID.String(),
		}); err == nil {
			data.CustomerName = strings.TrimSpace(user.FirstName + " " + user.LastName)
			data.CustomerEmail = user.Email
		}
	}

	return data
}

func receiptDescription(payment paymentdomain.Payment) string {
	switch {
	case payment.ServiceID != nil:
		return "Doula service booking"
	case payment.AppointmentID != nil:
		return "Appointment"
	case payment.TrainingID != nil:
		return "Training enrollment"
	default:
		return "Payment"
	}
}
