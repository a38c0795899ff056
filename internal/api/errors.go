package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tasklist/internal/errors"
	"tasklist/internal/validation"
)

// Top-level messages, one per error category.
const (
	msgValidation   = "Error on request"
	msgNotFound     = "Resource not found"
	msgConflict     = "Resource already exists"
	msgInvalidInput = "Invalid request"
	msgTimeout      = "Request timed out"
	msgInternal     = "Internal server error"
)

// errorHandler renders every error returned by a handler as an apiError body.
func errorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := buildErrorResponse(err, time.Now().UTC())

		entry := logger.WithFields(log.Fields{
			"method":     c.Request().Method,
			"uri":        c.Request().RequestURI,
			"status":     status,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).WithError(err)
		if appErr, ok := errors.AsAppError(err); ok && len(appErr.Context) > 0 {
			entry = entry.WithFields(log.Fields(appErr.Context))
		}
		if shouldLog(err) {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.WithError(err).Error("failed to write error response")
		}
	}
}

// shouldLog reports whether err is a server-side failure. Routing errors
// raised by echo count only when they are 5xx.
func shouldLog(err error) bool {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code >= http.StatusInternalServerError
	}
	return errors.ShouldLogError(err)
}

func buildErrorResponse(err error, now time.Time) (int, apiError) {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code, apiError{
			Status:    he.Code,
			Error:     http.StatusText(he.Code),
			Message:   fmt.Sprint(he.Message),
			Timestamp: now,
		}
	}

	status := statusFor(err)
	body := apiError{
		Status:    status,
		Error:     http.StatusText(status),
		Code:      errors.GetErrorCode(err),
		Timestamp: now,
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		body.Message = msgInternal
		return status, body
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		body.Message = msgValidation
		if ve, ok := validation.AsValidationError(err); ok {
			body.SubErrors = toSubErrors(ve)
		}
	case errors.ErrorTypeNotFound:
		body.Message = msgNotFound
	case errors.ErrorTypeConflict:
		body.Message = msgConflict
	case errors.ErrorTypeInvalidInput:
		body.Message = msgInvalidInput
	case errors.ErrorTypeTimeout:
		body.Message = msgTimeout
	default:
		body.Message = msgInternal
	}
	body.DebugMessage = errors.GetUserMessage(err)
	return status, body
}

func statusFor(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func toSubErrors(ve *validation.ValidationError) []apiSubError {
	subs := make([]apiSubError, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		subs = append(subs, apiSubError{
			Object:        ve.Object,
			Field:         fe.Field,
			RejectedValue: fe.Value,
			Message:       fe.Message,
			Code:          fe.Code,
		})
	}
	return subs
}
