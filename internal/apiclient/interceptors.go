package apiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

// Header names stamped on outgoing requests.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestTime   = "X-Request-Time"
	HeaderRequestID     = "X-Request-ID"
)

// Interceptor mutates an outgoing request before it is sent. Returning an
// error aborts the call.
type Interceptor func(ctx context.Context, req *http.Request) error

// BearerFromSession attaches the stored access token unless the request
// already carries an Authorization header. A missing session is not an error.
func BearerFromSession(sessions ports.SessionStore, logger *slog.Logger) Interceptor {
	return func(ctx context.Context, req *http.Request) error {
		if sessions == nil || req.Header.Get(HeaderAuthorization) != "" {
			return nil
		}
		sess, err := sessions.Load(ctx)
		if err != nil {
			if !errors.Is(err, domainauth.ErrNoSession) && logger != nil {
				logger.WarnContext(ctx, "read session for bearer token", "error", err)
			}
			return nil
		}
		if sess.Token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+sess.Token)
		}
		return nil
	}
}

// RequestTime stamps the send time in epoch milliseconds.
func RequestTime(now func() time.Time) Interceptor {
	return func(_ context.Context, req *http.Request) error {
		req.Header.Set(HeaderRequestTime, strconv.FormatInt(now().UnixMilli(), 10))
		return nil
	}
}

// RequestID stamps a fresh correlation id unless one is set.
func RequestID() Interceptor {
	return func(_ context.Context, req *http.Request) error {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, uuid.NewString())
		}
		return nil
	}
}

// LogRequest writes a debug line per outgoing request.
func LogRequest(logger *slog.Logger) Interceptor {
	return func(ctx context.Context, req *http.Request) error {
		if logger == nil {
			return nil
		}
		logger.DebugContext(ctx, "api request",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"request_id", req.Header.Get(HeaderRequestID),
		)
		return nil
	}
}
