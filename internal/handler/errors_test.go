package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appointmentsvc "github.com/medicore/hospital-api/internal/service/appointment"
	apperrors "github.com/medicore/hospital-api/pkg/errors"
)

func writeErrorStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteError(c, err)
	return w.Code, w.Body.String()
}

func TestWriteErrorConflictIs400(t *testing.T) {
	status, body := writeErrorStatus(t, &appointmentsvc.ConflictError{StartTime: "14:30"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "appointment overlaps with existing appointment (14:30)")
}

func TestWriteErrorNotAvailableIs400(t *testing.T) {
	status, body := writeErrorStatus(t, &appointmentsvc.NotAvailableError{Weekday: time.Sunday})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "doctor is not available on Sunday")
}

func TestWriteErrorAppErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.NotFound("doctor", nil), http.StatusNotFound},
		{apperrors.BadRequest("bad input", nil), http.StatusBadRequest},
		{apperrors.Unauthorized(nil), http.StatusUnauthorized},
		{apperrors.Conflict("email already registered", nil), http.StatusConflict},
		{apperrors.Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := writeErrorStatus(t, tt.err)
		assert.Equal(t, tt.status, status, "error %v", tt.err)
	}
}

func TestWriteErrorUnknownErrorHidesDetail(t *testing.T) {
	status, body := writeErrorStatus(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "connection refused")
	assert.Contains(t, body, "internal server error")
}

func TestNewListDataPages(t *testing.T) {
	data := NewListData(nil, 25, 1, 10)
	assert.Equal(t, int64(3), data.Pages)

	data = NewListData(nil, 30, 2, 10)
	assert.Equal(t, int64(3), data.Pages)

	data = NewListData(nil, 0, 1, 10)
	assert.Equal(t, int64(0), data.Pages)
}
