package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/mocks"
)

func sessionRouter(t *testing.T, authSvc domain.AuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mw := NewSessionMW(authSvc, "authgate.session_token", "/auth/sign-in", nil)

	r := gin.New()
	protected := r.Group("/admin")
	protected.Use(mw.Require())
	protected.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserID),
			"role":    c.GetString(CtxUserRole),
		})
	})
	return r
}

func TestSessionMW_Admits(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.GetSessionFunc = func(ctx context.Context, token string) (*domain.SessionContext, error) {
		assert.Equal(t, "aaa.bbb.ccc", token)
		return &domain.SessionContext{
			Session: &domain.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
			User:    &domain.User{ID: "user-1", Role: domain.RoleAdmin},
		}, nil
	}

	r := sessionRouter(t, authSvc)
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: "authgate.session_token", Value: "aaa.bbb.ccc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
	assert.Contains(t, w.Body.String(), domain.RoleAdmin)
}

func TestSessionMW_RedirectsAnonymous(t *testing.T) {
	// Default mock GetSession returns (nil, nil).
	r := sessionRouter(t, mocks.NewMockAuthService())
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/sign-in?callbackUrl=%2Fadmin%2Fusers", w.Header().Get("Location"))
}

func TestSessionMW_FailsClosedOnStoreError(t *testing.T) {
	authSvc := mocks.NewMockAuthService()
	authSvc.GetSessionFunc = func(ctx context.Context, token string) (*domain.SessionContext, error) {
		return nil, errors.New("redis connection refused")
	}

	r := sessionRouter(t, authSvc)
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: "authgate.session_token", Value: "aaa.bbb.ccc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Session verification unavailable")
}
