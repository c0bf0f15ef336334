package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// StatusFor maps a domain error to its HTTP status and a stable error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInsufficientCapacity):
		return http.StatusConflict, "insufficient_capacity"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrHoldExpired):
		return http.StatusGone, "hold_expired"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	resp := errorResponse{Error: err.Error(), Code: code}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		resp.Error = "internal error"
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, field, message string) {
	writeError(c, domain.NewValidationError(field, message))
}
