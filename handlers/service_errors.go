package handlers

import (
	"errors"
	"net/http"

	"github.com/edubridge/platform/services"
	"github.com/edubridge/platform/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)
	status := http.StatusInternalServerError
	message := "An unexpected error occurred"

	switch {
	case services.IsNotFoundError(err):
		status, message = http.StatusNotFound, publicMessage(err)
	case services.IsValidationError(err):
		status, message = http.StatusBadRequest, publicMessage(err)
	case services.IsUnauthorizedError(err):
		status, message = http.StatusUnauthorized, publicMessage(err)
	case services.IsForbiddenError(err):
		status, message = http.StatusForbidden, publicMessage(err)
	case services.IsConflictError(err):
		status, message = http.StatusConflict, publicMessage(err)
	case services.IsUnavailableError(err):
		status, message = http.StatusServiceUnavailable, publicMessage(err)
		details = nil
	case services.IsInternalError(err):
		// Log internal errors but return generic message
		logger.Error("internal server error", zap.Error(err))
		message = "An internal error occurred"
		details = nil
	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		details = nil
	}

	if writeErr := utils.WriteError(w, status, message, details); writeErr != nil {
		logger.Error("failed to write error response", zap.Int("status", status), zap.Error(writeErr))
	}

	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		logger.Debug("handled service error",
			zap.String("type", string(domainErr.Type)),
			zap.String("message", domainErr.Message),
			zap.Any("details", domainErr.Details))
	}
}

// publicMessage returns the client-facing text of a domain error
func publicMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	message := err.Error()
	var details map[string]interface{}
	if utils.IsValidationError(err) {
		message = "Validation failed"
		details = utils.FieldDetails(utils.GetValidationFields(err))
	}

	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
