package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/logger"
)

// errorMapping binds a sentinel error to its HTTP representation. When
// exposeCause is set the error text reaches the client.
type errorMapping struct {
	target      error
	status      int
	code        dto.ErrorCode
	message     string
	exposeCause bool
}

var errorMappings = []errorMapping{
	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeSessionNotFound, "Wizard session not found or expired", false},
	{apperrors.ErrSessionClosed, http.StatusGone, dto.ErrorCodeSessionClosed, "Wizard session is closed", false},
	{apperrors.ErrSessionNotReady, http.StatusConflict, dto.ErrorCodeSessionNotReady, "Wizard session is still loading", true},
	{apperrors.ErrSubmitInProgress, http.StatusConflict, dto.ErrorCodeSubmitInProgress, "A submission is already in progress", false},
	{apperrors.ErrInvalidStep, http.StatusConflict, dto.ErrorCodeInvalidStep, "Operation not allowed on the current step", true},
	{apperrors.ErrEntryRejected, http.StatusUnprocessableEntity, dto.ErrorCodeEntryRejected, "Entry change rejected", true},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", true},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict", true},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", false},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", false},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found", false},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", true},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request", true},
	{apperrors.ErrBackendNotConfigured, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Form service is not configured", false},
	{apperrors.ErrBackendUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Could not reach the form service, please retry", false},
	{apperrors.ErrBackendRejected, http.StatusBadGateway, dto.ErrorCodeBackendRejected, "The form service rejected the request", true},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrorCodeExternalServiceError, "The request timed out, please retry", false},
}

// MapError resolves the status code and error detail for err
func MapError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if m.exposeCause {
			var ce *apperrors.CustomError
			if errors.As(err, &ce) && ce.Message != "" {
				message = ce.Message
			} else if err.Error() != m.target.Error() {
				message = err.Error()
			}
		}
		detail := dto.NewErrorDetail(m.code, message)
		if m.status >= http.StatusInternalServerError {
			detail.WithSeverity(dto.ErrorSeverityWarning).WithDetails(map[string]interface{}{"retryable": true})
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := MapError(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	})
}
