package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"weekend only leave range", leave.ErrNoWorkingDays, http.StatusBadRequest, "BAD_REQUEST"},
		{"wrapped invalid run state", fmt.Errorf("export: %w", payroll.ErrInvalidRunState), http.StatusBadRequest, "BAD_REQUEST"},
		{"not clocked in", attendance.ErrNotClockedIn, http.StatusBadRequest, "BAD_REQUEST"},
		{"validation", validator.ValidationErrors{{Field: "month", Message: "must be between 1 and 12"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"already clocked in", attendance.ErrAlreadyClockedIn, http.StatusConflict, "CONFLICT"},
		{"lock held", lock.ErrLockHeld, http.StatusConflict, "CONFLICT"},
		{"run missing", payroll.ErrPayrollRunNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not request owner", leave.ErrNotRequestOwner, http.StatusForbidden, "FORBIDDEN"},
		{"no company claim", user.ErrCompanyIDRequired, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"queue full", notification.ErrQueueFull, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec).Error.Code)
		})
	}
}

func TestHandleError_NoWorkingDaysMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, leave.ErrNoWorkingDays)

	assert.Equal(t, leave.ErrNoWorkingDays.Error(), decode(t, rec).Error.Message)
}

func TestHandleError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("clock in: %w", &attendance.GeofenceError{DistanceMeters: 812.4, RadiusMeters: 200}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"distance_meters": "812", "radius_meters": "200"}, decode(t, rec).Error.Details)

	rec = httptest.NewRecorder()
	HandleError(rec, &leave.InsufficientBalanceError{Requested: decimal.NewFromInt(3), Available: decimal.RequireFromString("1.5")})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"requested": "3", "available": "1.5"}, decode(t, rec).Error.Details)
}
