package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

// SessionCookieName is the cookie carrying the browser session id.
const SessionCookieName = "session_id"

// LoginPath is where unauthenticated browser requests are sent.
const LoginPath = "/login"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CookieConfig controls the session id cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// SessionCookie ensures every request carries a session id. A missing or
// malformed cookie is replaced with a fresh UUID. The id is attached to the
// request context with domainauth.WithSessionID so keyed session stores can
// select the record.
func SessionCookie(cfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(domainauth.WithSessionID(r.Context(), id)))
		})
	}
}

// SessionReader loads the session of the current request.
type SessionReader interface {
	CurrentSession(ctx context.Context) (domainauth.Session, error)
}

// RequireSession returns a middleware that loads the session before the
// handler runs. Without a usable session, browser requests are redirected to
// the login page and API requests receive 401. Nothing is rendered partially.
func RequireSession(sessions SessionReader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.CurrentSession(r.Context())
			if err != nil {
				if !errors.Is(err, domainauth.ErrNoSession) {
					logger.WarnContext(r.Context(), "read session", "error", err)
				}
				unauthenticated(w, r)
				return
			}
			ctx := WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		redirectToLogin(w, r)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// Downstream handlers use it to choose between redirects and JSON responses.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats identity API routes as API traffic and otherwise
// looks for an Accept header that prefers HTML. A form post counts as a
// browser request.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/auth/") {
		return false
	}
	if isFormPost(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	return strings.Contains(accept, "text/html")
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// RateLimit rejects requests from clients that exceed limiter with 429.
// A nil limiter disables the check.
func RateLimit(limiter *ClientLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				logger.WarnContext(r.Context(), "rate limited", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				WriteError(w, ErrorParams{
					Code:    http.StatusTooManyRequests,
					ErrCode: "rate_limited",
					Err:     errors.New("too many attempts, try again later"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SingleSubmission rejects a second concurrent request for the same session
// id with 409 while the first is still being processed.
func SingleSubmission(guard *InFlight) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := domainauth.SessionIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			key := r.URL.Path + "|" + id
			if !guard.Begin(key) {
				WriteError(w, ErrorParams{
					Code:    http.StatusConflict,
					ErrCode: "submission_in_progress",
					Err:     errors.New("a submission for this session is already in progress"),
				})
				return
			}
			defer guard.End(key)
			next.ServeHTTP(w, r)
		})
	}
}
