package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/config"
	httpx "github.com/you/authgate/internal/http"
	"github.com/you/authgate/internal/http/handlers"
	"github.com/you/authgate/internal/http/middleware"
	"github.com/you/authgate/internal/infrastructure/auth"
	"github.com/you/authgate/internal/infrastructure/database"
	"github.com/you/authgate/internal/infrastructure/notifications"
	"github.com/you/authgate/internal/infrastructure/repositories"
	"github.com/you/authgate/internal/metrics"
	"github.com/you/authgate/internal/services"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(gdb, cfg.CasbinModelPath)
	if err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB).Client
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return err
	}

	// Infrastructure services
	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.SessionSecret, cfg.SessionIssuer)
	notifySvc := notifications.NewResendService(cfg.ResendAPIKey, cfg.ResendFrom)
	socialGw := auth.NewSocialGateway(socialParams(cfg))

	// Repositories
	userRepo := repositories.NewUserRepository(gdb)
	accountRepo := repositories.NewAccountRepository(gdb)
	sessionRepo := repositories.NewSessionRepository(rdb, cfg.SessionTTL)
	transient := repositories.NewTransientStore(rdb, "authgate:")

	// Services
	policySvc := services.NewPolicyService(services.WrapEnforcer(cas.E))
	authSvc := services.NewAuthService(
		services.AuthConfig{SessionTTL: cfg.SessionTTL, BaseURL: cfg.BaseURL},
		userRepo, accountRepo, sessionRepo,
		passwordSvc, tokenSvc, notifySvc, socialGw, transient,
	)

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Handlers
	pageH := handlers.NewPageHandlers(authSvc, cfg.SessionCookieName, cfg.SignInPath, collector)
	authH := handlers.NewAuthHandlers(authSvc, cfg.SessionCookieName, cfg.SessionTTL, cfg.SignInPath, cfg.GoodbyePath, collector)
	userH := handlers.NewUserHandlers(authSvc)
	polH := &handlers.PolicyHandlers{PolicySvc: policySvc}

	// Middleware
	edge := middleware.NewEdgeGate(cfg.SessionCookieName, cfg.SignInPath, cfg.ProtectedPrefixes, collector)
	sessionMW := middleware.NewSessionMW(authSvc, cfg.SessionCookieName, cfg.SignInPath, collector)
	casbinMW := middleware.NewCasbinMW(policySvc)
	rl := middleware.NewRateLimiter(cfg.SignInPerMinute, cfg.SignInBurst)
	defer rl.Stop()

	r := httpx.BuildRouter(httpx.RouterDeps{
		Pages:     pageH,
		Auth:      authH,
		Users:     userH,
		Policies:  polH,
		EdgeGate:  edge,
		SessionMW: sessionMW,
		CasbinMW:  casbinMW,
		RateLimit: rl,
		Registry:  registry,
		Templates: "web/templates/*.html",
	})

	seedPolicies(policySvc)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}

// seedPolicies installs the default admin policies on an empty policy table.
func seedPolicies(policySvc domain.PolicyService) {
	if len(policySvc.GetPolicies()) > 0 {
		return
	}
	if err := policySvc.AddPolicy("role_admin", "/admin/*", "(GET|POST|DELETE)"); err != nil {
		log.Printf("casbin: failed to seed policies: %v", err)
		return
	}
	log.Println("casbin: seeded default policies")
}

func socialParams(cfg *config.Config) map[domain.SocialProvider]auth.ProviderParams {
	params := make(map[domain.SocialProvider]auth.ProviderParams)
	for name, p := range cfg.Social {
		provider, err := domain.ParseSocialProvider(name)
		if err != nil {
			log.Printf("config: ignoring unknown social provider %q", name)
			continue
		}
		params[provider] = auth.ProviderParams{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			Scopes:       p.Scopes,
			RedirectURL:  cfg.BaseURL + "/api/auth/social/" + name + "/callback",
		}
	}
	return params
}
