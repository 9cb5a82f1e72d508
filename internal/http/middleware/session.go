package middleware

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/metrics"
)

// Context keys set by the session middleware.
const (
	CtxSession  = "session_ctx"
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

// SessionMW performs the authoritative session check for route groups that
// cannot do it in the handler. A store failure denies access (fail closed)
// instead of admitting the request.
type SessionMW struct {
	authSvc    domain.AuthService
	cookieName string
	signInPath string
	recorder   metrics.Recorder
}

// NewSessionMW creates the session middleware wrapper. recorder may be nil.
func NewSessionMW(authSvc domain.AuthService, cookieName, signInPath string, recorder metrics.Recorder) *SessionMW {
	return &SessionMW{
		authSvc:    authSvc,
		cookieName: cookieName,
		signInPath: signInPath,
		recorder:   recorder,
	}
}

// Require returns the middleware function.
func (mw *SessionMW) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(mw.cookieName)

		sessionCtx, err := mw.authSvc.GetSession(c.Request.Context(), token)
		if err != nil {
			log.Printf("SESSION_CHECK_FAILED: path=%s error=%v", c.Request.URL.Path, err)
			if mw.recorder != nil {
				mw.recorder.RecordPageGate(metrics.OutcomeError)
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session verification unavailable"})
			c.Abort()
			return
		}

		if sessionCtx == nil {
			if mw.recorder != nil {
				mw.recorder.RecordPageGate(metrics.OutcomeDeny)
			}
			redirect := mw.signInPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.Path)
			c.Redirect(http.StatusSeeOther, redirect)
			c.Abort()
			return
		}

		if mw.recorder != nil {
			mw.recorder.RecordPageGate(metrics.OutcomeAdmit)
		}
		c.Set(CtxSession, sessionCtx)
		c.Set(CtxUserID, sessionCtx.User.ID)
		c.Set(CtxUserRole, sessionCtx.User.Role)
		c.Next()
	}
}
