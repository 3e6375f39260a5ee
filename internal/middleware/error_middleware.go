package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/logger"
)

// HandleAPIError maps an error returned by a service to a status code and a
// JSON envelope. Anything not recognised is reported as a 500 with a generic
// message; the original error is only logged.
func HandleAPIError(c *gin.Context, err error) {
	status, message := classifyError(err)

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	}

	var details interface{}
	if d := apperrors.PublicDetails(err); len(d) > 0 {
		details = d
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, details))
}

func classifyError(err error) (int, string) {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, apperrors.PublicMessage(err, notFoundMessage(err))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, apperrors.PublicMessage(err, "Permission denied")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, "Account is disabled"
	case errors.Is(err, apperrors.ErrProfileMissing):
		return http.StatusForbidden, "No profile is linked to this identity"
	case errors.Is(err, apperrors.ErrRegistrationClosed):
		return http.StatusForbidden, "Registration is disabled"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, pkgauth.ErrExpiredToken):
		return http.StatusUnauthorized, "Token expired"
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenNotFound, apperrors.ErrTokenRevoked,
		pkgauth.ErrInvalidToken, pkgauth.ErrInvalidFormat):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, apperrors.PublicMessage(err, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, apperrors.PublicMessage(err, "Bad request")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, "Email already exists"
	case errors.Is(err, apperrors.ErrTooManyRequests):
		return http.StatusTooManyRequests, "Too many requests"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, apperrors.ErrInternNotFound):
		return "Intern not found"
	case errors.Is(err, apperrors.ErrRequestNotFound):
		return "Request not found"
	case errors.Is(err, apperrors.ErrDocumentNotFound):
		return "Document not found"
	case errors.Is(err, apperrors.ErrEvaluationNotFound):
		return "Evaluation not found"
	case errors.Is(err, apperrors.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, apperrors.ErrPlanningNotFound):
		return "Planning entry not found"
	case errors.Is(err, apperrors.ErrTemplateNotFound):
		return "Template not found"
	case errors.Is(err, apperrors.ErrSettingNotFound):
		return "Setting not found"
	}
	return "Resource not found"
}
