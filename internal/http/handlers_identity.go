package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
	"github.com/smartbin/portal/internal/validation"
	"github.com/smartbin/portal/internal/wire"
)

// IdentityAPIHandlers serves the identity API under /auth over an identity
// backend. Every response is a wire envelope.
type IdentityAPIHandlers struct {
	Backend ports.IdentityBackend
	Logger  *slog.Logger
}

func (h *IdentityAPIHandlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// fail writes the failure envelope and logs unexpected errors.
func (h *IdentityAPIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if _, _, ok := wire.CodeFor(err); !ok {
		h.logger().ErrorContext(r.Context(), "identity api error", "path", r.URL.Path, "error", err)
	}
	WriteFailure(w, err)
}

// decode reads the request body; a malformed body is a validation failure.
func (h *IdentityAPIHandlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(w, r, dst); err != nil {
		WriteJSON(w, http.StatusBadRequest, wire.Fail(wire.CodeValidation, fmt.Sprintf("invalid request body: %v", err)))
		return false
	}
	return true
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", domainauth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domainauth.ErrMalformedToken
	}
	return strings.TrimSpace(token), nil
}

// Login handles POST /auth/login.
func (h *IdentityAPIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domainauth.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := validation.Login(req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.Backend.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK(w, res)
}

// Register handles POST /auth/register.
func (h *IdentityAPIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domainauth.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := validation.Register(req, validation.RegisterOptions{}); err != nil {
		h.fail(w, r, err)
		return
	}
	receipt, err := h.Backend.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK(w, receipt)
}

// Profile handles GET /auth/user.
func (h *IdentityAPIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profile, err := h.Backend.FetchProfile(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK(w, profile)
}

// Refresh handles POST /auth/refresh.
func (h *IdentityAPIHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domainauth.RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		h.fail(w, r, domainauth.ErrMissingToken)
		return
	}
	pair, err := h.Backend.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK(w, pair.WithDefaults())
}

// Logout handles POST /auth/logout. A missing token is accepted.
func (h *IdentityAPIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil && !errors.Is(err, domainauth.ErrMissingToken) {
		h.fail(w, r, err)
		return
	}
	if err := h.Backend.Logout(r.Context(), token); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK[any](w, nil)
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *IdentityAPIHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domainauth.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := validation.New().Validate("email", req.Email, validation.Email()...).Err(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ack(w, r, h.Backend.ForgotPassword(r.Context(), req))
}

// ResetPassword handles POST /auth/reset-password.
func (h *IdentityAPIHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domainauth.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := validation.ResetPassword(req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ack(w, r, h.Backend.ResetPassword(r.Context(), req))
}

// ChangePassword handles POST /auth/change-password.
func (h *IdentityAPIHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req domainauth.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := validation.ChangePassword(req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ack(w, r, h.Backend.ChangePassword(r.Context(), token, req))
}

// SendVerificationCode handles POST /auth/send-verification-code.
func (h *IdentityAPIHandlers) SendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var req domainauth.VerificationCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.ack(w, r, h.Backend.SendVerificationCode(r.Context(), req))
}

// VerifyEmail handles POST /auth/verify-email.
func (h *IdentityAPIHandlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req domainauth.VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.ack(w, r, h.Backend.VerifyEmail(r.Context(), req))
}

// CheckUsername handles GET /auth/check-username/{username}.
func (h *IdentityAPIHandlers) CheckUsername(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Backend.CheckUsernameAvailable(r.Context(), r.PathValue("username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK(w, ok)
}

// CheckEmail handles GET /auth/check-email/{email}.
func (h *IdentityAPIHandlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Backend.CheckEmailAvailable(r.Context(), r.PathValue("email"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK(w, ok)
}

func (h *IdentityAPIHandlers) ack(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteOK[any](w, nil)
}
