package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/metrics"
)

// AuthHandlers handles the authentication HTTP surface: credential sign-in,
// sign-out from both the API and the page form, social redirects and the
// password reset endpoints.
type AuthHandlers struct {
	authSvc     domain.AuthService
	cookieName  string
	sessionTTL  time.Duration
	signInPath  string
	goodbyePath string
	recorder    metrics.Recorder
}

// NewAuthHandlers creates new auth handlers. recorder may be nil.
func NewAuthHandlers(authSvc domain.AuthService, cookieName string, sessionTTL time.Duration, signInPath, goodbyePath string, recorder metrics.Recorder) *AuthHandlers {
	return &AuthHandlers{
		authSvc:     authSvc,
		cookieName:  cookieName,
		sessionTTL:  sessionTTL,
		signInPath:  signInPath,
		goodbyePath: goodbyePath,
		recorder:    recorder,
	}
}

// SignInRequest represents a credential sign-in request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgetPasswordRequest represents a password reset request
type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the emailed token and the new password
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignIn handles POST /api/auth/sign-in
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.SignIn(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if h.recorder != nil {
			h.recorder.RecordSignIn("credentials", false)
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		log.Printf("SIGNIN_FAILED: email=%s error=%v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-in failed"})
		return
	}

	if h.recorder != nil {
		h.recorder.RecordSignIn("credentials", true)
	}
	setSessionCookie(c, h.cookieName, result.Token, int(h.sessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user": gin.H{
				"id":    result.User.ID,
				"email": result.User.Email,
				"name":  result.User.Name,
				"role":  result.User.Role,
			},
			"session_id": result.Session.ID,
			"expires_in": result.ExpiresIn,
		},
	})
}

// SignOutAPI handles POST /api/auth/sign-out. The cookie is cleared no
// matter what the store says: the user-visible outcome is always signed out.
func (h *AuthHandlers) SignOutAPI(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)

	if err := h.authSvc.SignOut(c.Request.Context(), token); err != nil {
		log.Printf("SIGNOUT_STORE_FAILED: error=%v", err)
	}

	clearSessionCookie(c, h.cookieName)
	if h.recorder != nil {
		h.recorder.RecordSignOut()
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"signed_out": true}})
}

// SignOutForm handles POST /auth/sign-out from the page form: revoke, clear
// the cookie, and land on the goodbye page. A store failure is flagged on
// the redirect but never blocks the sign-out.
func (h *AuthHandlers) SignOutForm(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)

	redirect := h.goodbyePath
	if err := h.authSvc.SignOut(c.Request.Context(), token); err != nil {
		log.Printf("SIGNOUT_STORE_FAILED: error=%v", err)
		redirect = h.goodbyePath + "?error=signout_failed"
	}

	clearSessionCookie(c, h.cookieName)
	if h.recorder != nil {
		h.recorder.RecordSignOut()
	}
	c.Redirect(http.StatusSeeOther, redirect)
}

// SocialRedirect handles GET /api/auth/social/:provider
func (h *AuthHandlers) SocialRedirect(c *gin.Context) {
	provider, err := domain.ParseSocialProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}

	authURL, err := h.authSvc.SocialRedirect(c.Request.Context(), provider, c.Query("callbackUrl"))
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not configured"})
			return
		}
		log.Printf("SOCIAL_REDIRECT_FAILED: provider=%s error=%v", provider, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-in failed"})
		return
	}

	c.Redirect(http.StatusSeeOther, authURL)
}

// SocialCallback handles GET /api/auth/social/:provider/callback
func (h *AuthHandlers) SocialCallback(c *gin.Context) {
	provider, err := domain.ParseSocialProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
		return
	}

	result, callbackURL, err := h.authSvc.CompleteSocialSignIn(
		c.Request.Context(), provider, c.Query("state"), c.Query("code"), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if h.recorder != nil {
			h.recorder.RecordSignIn(provider.String(), false)
		}
		if errors.Is(err, domain.ErrStateMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sign-in state"})
			return
		}
		log.Printf("SOCIAL_CALLBACK_FAILED: provider=%s error=%v", provider, err)
		c.Redirect(http.StatusSeeOther, h.signInPath+"?error=social_failed")
		return
	}

	if h.recorder != nil {
		h.recorder.RecordSignIn(provider.String(), true)
	}
	setSessionCookie(c, h.cookieName, result.Token, int(h.sessionTTL.Seconds()))
	c.Redirect(http.StatusSeeOther, callbackURL)
}

// ForgetPassword handles POST /api/auth/forget-password. The response never
// reveals whether the email is registered.
func (h *AuthHandlers) ForgetPassword(c *gin.Context) {
	var req ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		log.Printf("PASSWORD_RESET_FAILED: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "If the address is registered, a reset link has been sent."},
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
			return
		}
		log.Printf("PASSWORD_RESET_FAILED: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password updated"}})
}
