package server

import (
	"context"
	"errors"
	"net/http"

	"chartlens/internal/capture"
	"chartlens/internal/orchestrator"
)

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, capture.ErrInvalidConstraints):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, capture.ErrNoFileSelected):
		return http.StatusNoContent
	case errors.Is(err, capture.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orchestrator.ErrBusy),
		errors.Is(err, orchestrator.ErrNotCapturing),
		errors.Is(err, capture.ErrNoActiveStream):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
