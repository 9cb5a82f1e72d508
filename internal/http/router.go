package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/you/authgate/internal/http/handlers"
	"github.com/you/authgate/internal/http/middleware"
	"github.com/you/authgate/internal/metrics"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Pages     *handlers.PageHandlers
	Auth      *handlers.AuthHandlers
	Users     *handlers.UserHandlers
	Policies  *handlers.PolicyHandlers
	EdgeGate  *middleware.EdgeGate
	SessionMW *middleware.SessionMW
	CasbinMW  *middleware.CasbinMW
	RateLimit *middleware.RateLimiter
	Registry  *prometheus.Registry
	Templates string
}

// BuildRouter assembles the gin engine. The edge gate runs on every request;
// the page gate runs in the dashboard handler and, for the admin group, in
// the session middleware.
func BuildRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true
	r.Use(d.EdgeGate.Filter())

	if d.Templates != "" {
		r.LoadHTMLGlob(d.Templates)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Registry)))
	}

	// Pages
	r.GET("/", d.Pages.Home)
	r.GET("/auth/sign-in", d.Pages.SignInPage)
	r.GET("/auth/goodbye", d.Pages.GoodbyePage)
	r.POST("/auth/sign-out", d.Auth.SignOutForm)
	r.GET("/user/dashboard", d.Pages.Dashboard)

	// API
	api := r.Group("/api")
	api.POST("/users", d.Users.Create)

	auth := api.Group("/auth")
	auth.POST("/sign-in", d.RateLimit.Middleware(), d.Auth.SignIn)
	auth.POST("/sign-out", d.Auth.SignOutAPI)
	auth.POST("/forget-password", d.RateLimit.Middleware(), d.Auth.ForgetPassword)
	auth.POST("/reset-password", d.RateLimit.Middleware(), d.Auth.ResetPassword)
	auth.GET("/social/:provider", d.Auth.SocialRedirect)
	auth.GET("/social/:provider/callback", d.Auth.SocialCallback)

	// Admin area: full session check plus role policy.
	adm := r.Group("/admin").Use(d.SessionMW.Require(), d.CasbinMW.Enforce())
	adm.GET("/users", d.Pages.AdminUsers)
	adm.GET("/policies", d.Policies.List)
	adm.POST("/policies", d.Policies.Add)
	adm.DELETE("/policies", d.Policies.Remove)

	return r
}
