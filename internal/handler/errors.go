package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appointmentsvc "github.com/medicore/hospital-api/internal/service/appointment"
	apperrors "github.com/medicore/hospital-api/pkg/errors"
)

// WriteError maps an error to its HTTP status and JSON envelope. Scheduling
// rejections (overlap, non-working day) are user-correctable 400s; AppError
// codes carry their own status; anything else is a 500 with the detail kept
// out of the response body.
func WriteError(c *gin.Context, err error) {
	var conflict *appointmentsvc.ConflictError
	var notAvailable *appointmentsvc.NotAvailableError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, NewErrorResponse(conflict.Error()))
	case errors.As(err, &notAvailable):
		c.JSON(http.StatusBadRequest, NewErrorResponse(notAvailable.Error()))
	case errors.As(err, &appErr):
		c.JSON(statusFor(appErr.Code), NewErrorResponse(appErr.Message))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
	}
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
