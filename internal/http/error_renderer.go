package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/smartbin/portal/internal/apiclient"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	apperrors "github.com/smartbin/portal/internal/errors"
)

type webError struct {
	err     error
	status  int
	errCode string
}

// webErrors is ordered; the first errors.Is match wins.
var webErrors = []webError{
	{domainauth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domainauth.ErrAccountDisabled, http.StatusForbidden, "account_disabled"},
	{domainauth.ErrDuplicateUsername, http.StatusConflict, "duplicate_username"},
	{domainauth.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
	{domainauth.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
}

// isAuthFailure reports errors that mean the caller must log in again.
func isAuthFailure(err error) bool {
	return errors.Is(err, apiclient.ErrAuthenticationFailed) ||
		errors.Is(err, domainauth.ErrNoSession) ||
		errors.Is(err, domainauth.ErrMissingToken) ||
		errors.Is(err, domainauth.ErrMalformedToken) ||
		errors.Is(err, domainauth.ErrTokenExpired)
}

// ErrorOpts contains the options needed to render an error response.
type ErrorOpts struct {
	W      http.ResponseWriter
	R      *http.Request
	Err    error
	Logger *slog.Logger
}

// RenderError writes the web response for err. Authentication failures send
// browsers to the login page regardless of what the handler would render;
// API callers get 401. Validation errors carry the offending field. Unknown
// errors are logged and reported as 500 without detail.
func RenderError(opts ErrorOpts) {
	w, r, err := opts.W, opts.R, opts.Err

	if isAuthFailure(err) {
		unauthenticated(w, r)
		return
	}
	for _, m := range webErrors {
		if errors.Is(err, m.err) {
			WriteError(w, ErrorParams{Code: m.status, ErrCode: m.errCode, Err: m.err})
			return
		}
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeValidation {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New(appErr.Message),
			Field:   appErr.Field,
		})
		return
	}

	if opts.Logger != nil {
		opts.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: "internal_error",
		Err:     errors.New("internal server error"),
	})
}
