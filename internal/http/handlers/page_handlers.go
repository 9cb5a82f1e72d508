package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/http/middleware"
	"github.com/you/authgate/internal/metrics"
)

// PageHandlers renders the server-side pages. The dashboard handler is where
// the authoritative page gate runs for the user-facing area.
type PageHandlers struct {
	authSvc    domain.AuthService
	cookieName string
	signInPath string
	recorder   metrics.Recorder
}

// NewPageHandlers creates new page handlers. recorder may be nil.
func NewPageHandlers(authSvc domain.AuthService, cookieName, signInPath string, recorder metrics.Recorder) *PageHandlers {
	return &PageHandlers{
		authSvc:    authSvc,
		cookieName: cookieName,
		signInPath: signInPath,
		recorder:   recorder,
	}
}

// Home handles GET /. The header shows the signed-in user when a session
// exists; a store failure just renders the anonymous view.
func (h *PageHandlers) Home(c *gin.Context) {
	var user *domain.User
	if token, err := c.Cookie(h.cookieName); err == nil {
		if sessionCtx, err := h.authSvc.GetSession(c.Request.Context(), token); err == nil && sessionCtx != nil {
			user = sessionCtx.User
		}
	}

	c.HTML(http.StatusOK, "home.html", gin.H{"User": user})
}

// SignInPage handles GET /auth/sign-in
func (h *PageHandlers) SignInPage(c *gin.Context) {
	c.HTML(http.StatusOK, "sign_in.html", gin.H{
		"CallbackURL": c.Query("callbackUrl"),
		"Error":       c.Query("error"),
	})
}

// GoodbyePage handles GET /auth/goodbye
func (h *PageHandlers) GoodbyePage(c *gin.Context) {
	c.HTML(http.StatusOK, "goodbye.html", gin.H{
		"Error": c.Query("error"),
	})
}

// sessionView is the dashboard's rendering of one session record.
type sessionView struct {
	CreatedAt string
	ExpiresAt string
	Client    string
	IPAddress string
}

// accountView is the dashboard's rendering of one linked account.
type accountView struct {
	Provider  string
	Scope     string
	Connected string
}

// Dashboard handles GET /user/dashboard: the page-level gate. The edge gate
// has already filtered cookie-less requests; this is the authoritative check.
func (h *PageHandlers) Dashboard(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)

	sessionCtx, err := h.authSvc.GetSession(c.Request.Context(), token)
	if err != nil {
		// Fail closed: an unreachable store denies, never renders.
		log.Printf("SESSION_CHECK_FAILED: path=%s error=%v", c.Request.URL.Path, err)
		if h.recorder != nil {
			h.recorder.RecordPageGate(metrics.OutcomeError)
		}
		c.Redirect(http.StatusSeeOther, h.signInPath+"?error=unavailable&callbackUrl="+url.QueryEscape(c.Request.URL.Path))
		return
	}
	if sessionCtx == nil {
		if h.recorder != nil {
			h.recorder.RecordPageGate(metrics.OutcomeDeny)
		}
		c.Redirect(http.StatusSeeOther, h.signInPath+"?callbackUrl="+url.QueryEscape(c.Request.URL.Path))
		return
	}

	if h.recorder != nil {
		h.recorder.RecordPageGate(metrics.OutcomeAdmit)
	}

	user := sessionCtx.User

	sessions := make([]sessionView, 0, len(sessionCtx.RecentSessions))
	for _, s := range sessionCtx.RecentSessions {
		sessions = append(sessions, sessionView{
			CreatedAt: formatDate(s.CreatedAt),
			ExpiresAt: formatDate(s.ExpiresAt),
			Client:    summarizeUserAgent(s.UserAgent),
			IPAddress: s.IPAddress,
		})
	}

	accounts := make([]accountView, 0, len(sessionCtx.Accounts))
	for _, a := range sessionCtx.Accounts {
		accounts = append(accounts, accountView{
			Provider:  a.ProviderID,
			Scope:     a.Scope,
			Connected: formatDate(a.CreatedAt),
		})
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User":      user,
		"Initials":  initials(user.Name, user.Email),
		"CreatedAt": formatDate(user.CreatedAt),
		"UpdatedAt": formatDate(user.UpdatedAt),
		"Sessions":  sessions,
		"Accounts":  accounts,
	})
}

// AdminUsers handles GET /admin/users behind the session + policy middleware.
func (h *PageHandlers) AdminUsers(c *gin.Context) {
	users, err := h.authSvc.ListUsers(c.Request.Context(), 50, 0)
	if err != nil {
		log.Printf("USER_LIST_FAILED: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	sessionCtx := c.MustGet(middleware.CtxSession).(*domain.SessionContext)
	c.HTML(http.StatusOK, "admin_users.html", gin.H{
		"User":  sessionCtx.User,
		"Users": users,
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006 15:04")
}

// summarizeUserAgent reduces a raw user-agent string to "Browser on OS".
func summarizeUserAgent(ua string) string {
	if ua == "" {
		return "Unknown"
	}

	browsers := []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}
	systems := []string{"Windows", "Mac", "Linux", "Android", "iOS"}

	browser := "Browser"
	for _, b := range browsers {
		if strings.Contains(ua, b) {
			browser = b
			break
		}
	}

	system := "Device"
	for _, s := range systems {
		if strings.Contains(ua, s) {
			system = s
			break
		}
	}

	return browser + " on " + system
}

// initials derives up to two avatar initials from the name, falling back to
// the email's first letter.
func initials(name, email string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		if email == "" {
			return "U"
		}
		return strings.ToUpper(email[:1])
	}

	var out []rune
	for _, part := range strings.Fields(s) {
		out = append(out, []rune(part)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
