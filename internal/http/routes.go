package httpx

import (
	"log/slog"
	"net/http"

	"github.com/smartbin/portal/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	// Identity serves the /auth API when set.
	Identity ports.IdentityBackend
	// Auth serves the portal routes when set.
	Auth   AuthFacade
	Cookie CookieConfig
	// LoginLimiter throttles POST /login and POST /auth/login per client IP.
	LoginLimiter *ClientLimiter
	RequireTerms bool
	Health       map[string]HealthCheck
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	health := healthHandler(services.Health)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)

	limit := RateLimit(services.LoginLimiter, logger)
	if services.Identity != nil {
		registerIdentityRoutes(mux, &IdentityAPIHandlers{Backend: services.Identity, Logger: logger}, limit)
	}
	if services.Auth != nil {
		web := &WebHandlers{Auth: services.Auth, Logger: logger, RequireTerms: services.RequireTerms}
		registerWebRoutes(mux, web, webRouteConfig{
			Sessions: services.Auth,
			Limit:    limit,
			Guard:    NewInFlight(),
			Logger:   logger,
		})
	}

	var handler http.Handler = mux
	handler = SessionCookie(services.Cookie)(handler)
	handler = BrowserDetection()(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerIdentityRoutes(mux *http.ServeMux, h *IdentityAPIHandlers, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /auth/login", limit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("GET /auth/user", h.Profile)
	mux.HandleFunc("POST /auth/refresh", h.Refresh)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("POST /auth/forgot-password", h.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", h.ResetPassword)
	mux.HandleFunc("POST /auth/change-password", h.ChangePassword)
	mux.HandleFunc("POST /auth/send-verification-code", h.SendVerificationCode)
	mux.HandleFunc("POST /auth/verify-email", h.VerifyEmail)
	mux.HandleFunc("GET /auth/check-username/{username}", h.CheckUsername)
	mux.HandleFunc("GET /auth/check-email/{email}", h.CheckEmail)
}

type webRouteConfig struct {
	Sessions SessionReader
	Limit    func(http.Handler) http.Handler
	Guard    *InFlight
	Logger   *slog.Logger
}

func registerWebRoutes(mux *http.ServeMux, h *WebHandlers, cfg webRouteConfig) {
	once := SingleSubmission(cfg.Guard)
	protected := RequireSession(cfg.Sessions, cfg.Logger)

	mux.Handle("POST /login", cfg.Limit(once(http.HandlerFunc(h.Login))))
	mux.Handle("POST /register", once(http.HandlerFunc(h.Register)))
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /check/username", h.CheckUsername)
	mux.HandleFunc("GET /check/email", h.CheckEmail)

	mux.Handle("GET /session", protected(http.HandlerFunc(h.Session)))
	mux.Handle("GET /dashboard", protected(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /dashboard/{workspace}", protected(http.HandlerFunc(h.Workspace)))
}
