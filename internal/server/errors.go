package server

import (
	"errors"
	"net/http"
	"strings"

	appointmentdomain "github.com/IAmRubenNavarro/doula-life/internal/appointment/domain"
	authdomain "github.com/IAmRubenNavarro/doula-life/internal/auth/domain"
	catalogdomain "github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	consentdomain "github.com/IAmRubenNavarro/doula-life/internal/consent/domain"
	enrollmentdomain "github.com/IAmRubenNavarro/doula-life/internal/enrollment/domain"
	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	trainingdomain "github.com/IAmRubenNavarro/doula-life/internal/training/domain"
	userdomain "github.com/IAmRubenNavarro/doula-life/internal/user/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// classifyErrorForLog feeds the request logger. It reuses the response
// mapping so log labels and client payloads never drift apart.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, paymentdomain.ErrProviderRejected):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "provider_rejected",
			Message: err.Error(),
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, catalogdomain.ErrSlugTaken),
		errors.Is(err, paymentdomain.ErrAlreadyCaptured),
		errors.Is(err, paymentdomain.ErrNotApprovable),
		errors.Is(err, paymentdomain.ErrStatusRegression):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, paymentdomain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal),
		errors.Is(err, paymentdomain.ErrMisconfigured),
		errors.Is(err, paymentdomain.ErrPersistenceFailure):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isAuthValidationError(err),
		isUserValidationError(err),
		isCatalogValidationError(err),
		isAppointmentValidationError(err),
		isTrainingValidationError(err),
		isEnrollmentValidationError(err),
		isConsentValidationError(err),
		isPaymentValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, appointmentdomain.ErrNotFound),
		errors.Is(err, trainingdomain.ErrNotFound),
		errors.Is(err, enrollmentdomain.ErrNotFound),
		errors.Is(err, consentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "unsupported_provider":
		return "provider"
	case "missing_redirect_urls":
		return "return_url"
	case "password_too_short":
		return "password"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "unsupported_provider":
		return "unsupported payment provider"
	case "missing_redirect_urls":
		return "return_url and cancel_url are required"
	default:
		return "invalid value"
	}
}

// conflictMessage keeps the capture-flow conflicts descriptive; a blanket
// "conflict" tells a PayPal caller nothing about why execute was refused.
func conflictMessage(err error) string {
	switch {
	case errors.Is(err, paymentdomain.ErrAlreadyCaptured):
		return "payment already captured"
	case errors.Is(err, paymentdomain.ErrNotApprovable):
		return "payment is not in an approvable state"
	case errors.Is(err, paymentdomain.ErrStatusRegression):
		return "status cannot move backwards"
	default:
		return "conflict"
	}
}

func isAuthValidationError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrInvalidName),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrPasswordTooShort):
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidTitle),
		errors.Is(err, catalogdomain.ErrInvalidServiceType),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isAppointmentValidationError(err error) bool {
	switch {
	case errors.Is(err, appointmentdomain.ErrInvalidStatus),
		errors.Is(err, appointmentdomain.ErrInvalidID),
		errors.Is(err, appointmentdomain.ErrInvalidReference):
		return true
	default:
		return false
	}
}

func isTrainingValidationError(err error) bool {
	switch {
	case errors.Is(err, trainingdomain.ErrInvalidTitle),
		errors.Is(err, trainingdomain.ErrInvalidDate),
		errors.Is(err, trainingdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isEnrollmentValidationError(err error) bool {
	switch {
	case errors.Is(err, enrollmentdomain.ErrInvalidUser),
		errors.Is(err, enrollmentdomain.ErrInvalidTraining),
		errors.Is(err, enrollmentdomain.ErrInvalidPaymentStatus),
		errors.Is(err, enrollmentdomain.ErrInvalidID),
		errors.Is(err, enrollmentdomain.ErrInvalidReference):
		return true
	default:
		return false
	}
}

func isConsentValidationError(err error) bool {
	switch {
	case errors.Is(err, consentdomain.ErrInvalidUser),
		errors.Is(err, consentdomain.ErrInvalidAgreement),
		errors.Is(err, consentdomain.ErrInvalidID),
		errors.Is(err, consentdomain.ErrInvalidReference):
		return true
	default:
		return false
	}
}

func isPaymentValidationError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrProviderNotFound),
		errors.Is(err, paymentdomain.ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidCurrency),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidStatus),
		errors.Is(err, paymentdomain.ErrInvalidReference),
		errors.Is(err, paymentdomain.ErrMissingRedirectURLs),
		errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, paymentdomain.ErrCaptureUnsupported):
		return true
	default:
		return false
	}
}
