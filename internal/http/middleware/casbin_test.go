package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/mocks"
	"github.com/you/authgate/internal/services"
)

func casbinRouter(t *testing.T, role string, policySvc domain.PolicyService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mw := NewCasbinMW(policySvc)

	r := gin.New()
	admin := r.Group("/admin")
	admin.Use(func(c *gin.Context) {
		if role != "" {
			c.Set(CtxUserRole, role)
		}
		c.Next()
	})
	admin.Use(mw.Enforce())
	admin.GET("/users", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestCasbinMW(t *testing.T) {
	enforcer := mocks.NewMockCasbinEnforcer()
	enforcer.EnforceFunc = func(rvals ...interface{}) (bool, error) {
		return rvals[0] == "role_admin", nil
	}
	policySvc := services.NewPolicyService(enforcer)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "admin allowed", role: domain.RoleAdmin, wantStatus: http.StatusOK},
		{name: "user denied", role: domain.RoleUser, wantStatus: http.StatusForbidden},
		{name: "missing role context", role: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := casbinRouter(t, tt.role, policySvc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCasbinMW_EnforcerError(t *testing.T) {
	enforcer := mocks.NewMockCasbinEnforcer()
	enforcer.EnforceFunc = func(rvals ...interface{}) (bool, error) {
		return false, errors.New("adapter down")
	}

	r := casbinRouter(t, domain.RoleAdmin, services.NewPolicyService(enforcer))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
