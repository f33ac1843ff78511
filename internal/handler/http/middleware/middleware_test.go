package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestAs(actor *user.Actor) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if actor != nil {
		req = req.WithContext(WithActor(req.Context(), *actor))
	}
	return req
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name  string
		actor *user.Actor
		want  int
	}{
		{"no actor", nil, http.StatusUnauthorized},
		{"employee", &user.Actor{UserID: "u1", Role: user.RoleEmployee}, http.StatusForbidden},
		{"manager", &user.Actor{UserID: "u2", Role: user.RoleManager}, http.StatusForbidden},
		{"hr", &user.Actor{UserID: "u3", Role: user.RoleHR}, http.StatusOK},
		{"super admin", &user.Actor{UserID: "u4", Role: user.RoleSuperAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequirePermission(user.PermissionPayrollManage)(okHandler).ServeHTTP(rec, requestAs(tt.actor))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimitByUser(t *testing.T) {
	h := RateLimitByUser(0, 2)(okHandler)
	alice := &user.Actor{UserID: "alice", Role: user.RoleEmployee}
	bob := &user.Actor{UserID: "bob", Role: user.RoleEmployee}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestAs(alice))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(bob))
	assert.Equal(t, http.StatusOK, rec.Code)
}
