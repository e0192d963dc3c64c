package errors

import (
	"errors"
	"net/http"

	"studyhub/internal/timer"
)

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details interface{}) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}

func Unavailable(code, message string) *APIError {
	return New(http.StatusServiceUnavailable, code, message)
}

// FromTimer maps errors returned by a timer.Runner.
func FromTimer(err error) *APIError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, timer.ErrInvalidSettings):
		return BadRequest("invalid_settings", err.Error())
	case errors.Is(err, timer.ErrRunnerStopped):
		return Unavailable("timer_unavailable", "timer is shutting down")
	default:
		return Internal("timer command failed")
	}
}
