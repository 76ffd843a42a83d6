// Package remoteidentity implements ports.IdentityBackend against the
// identity HTTP API. Envelope business codes are translated back to the
// domain sentinels so callers see the same errors as with the in-memory
// backend.
package remoteidentity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/smartbin/portal/internal/apiclient"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
	"github.com/smartbin/portal/internal/wire"
)

// API paths relative to the client base URL.
const (
	PathLogin            = "/auth/login"
	PathRegister         = "/auth/register"
	PathUser             = "/auth/user"
	PathRefresh          = "/auth/refresh"
	PathLogout           = "/auth/logout"
	PathForgotPassword   = "/auth/forgot-password"
	PathResetPassword    = "/auth/reset-password"
	PathChangePassword   = "/auth/change-password"
	PathSendCode         = "/auth/send-verification-code"
	PathVerifyEmail      = "/auth/verify-email"
	PathCheckUsernameFmt = "/auth/check-username/"
	PathCheckEmailFmt    = "/auth/check-email/"
)

var _ ports.IdentityBackend = (*Backend)(nil)

// Backend forwards every operation to the identity API.
type Backend struct {
	client *apiclient.Client
	roles  ports.RoleMapper
}

// Option configures a Backend.
type Option func(*Backend)

// WithRoleMapper normalises the role of every returned profile.
func WithRoleMapper(m ports.RoleMapper) Option {
	return func(b *Backend) { b.roles = m }
}

// New returns a Backend over client.
func New(client *apiclient.Client, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, errors.New("remoteidentity: api client is required")
	}
	b := &Backend{client: client}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

func (b *Backend) Login(ctx context.Context, req domainauth.LoginRequest) (domainauth.LoginResult, error) {
	res, err := apiclient.Post[domainauth.LoginResult](ctx, b.client, PathLogin, req)
	if err != nil {
		return domainauth.LoginResult{}, translate(err)
	}
	res.User = b.normalise(res.User)
	return res, nil
}

func (b *Backend) Register(ctx context.Context, req domainauth.RegisterRequest) (domainauth.RegistrationReceipt, error) {
	res, err := apiclient.Post[domainauth.RegistrationReceipt](ctx, b.client, PathRegister, req)
	return res, translate(err)
}

func (b *Backend) FetchProfile(ctx context.Context, token string) (domainauth.UserProfile, error) {
	if token == "" {
		return domainauth.UserProfile{}, domainauth.ErrMissingToken
	}
	res, err := apiclient.Call[domainauth.UserProfile](ctx, b.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   PathUser,
		Bearer: token,
	})
	if err != nil {
		return domainauth.UserProfile{}, translate(err)
	}
	return b.normalise(res), nil
}

func (b *Backend) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	if refreshToken == "" {
		return domainauth.TokenPair{}, domainauth.ErrMissingToken
	}
	res, err := apiclient.Post[domainauth.TokenPair](ctx, b.client, PathRefresh,
		domainauth.RefreshRequest{RefreshToken: refreshToken})
	return res, translate(err)
}

func (b *Backend) Logout(ctx context.Context, token string) error {
	return translate(b.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   PathLogout,
		Bearer: token,
	}, nil))
}

func (b *Backend) ForgotPassword(ctx context.Context, req domainauth.ForgotPasswordRequest) error {
	return b.post(ctx, PathForgotPassword, "", req)
}

func (b *Backend) ResetPassword(ctx context.Context, req domainauth.ResetPasswordRequest) error {
	return b.post(ctx, PathResetPassword, "", req)
}

func (b *Backend) ChangePassword(ctx context.Context, token string, req domainauth.ChangePasswordRequest) error {
	return b.post(ctx, PathChangePassword, token, req)
}

func (b *Backend) SendVerificationCode(ctx context.Context, req domainauth.VerificationCodeRequest) error {
	return b.post(ctx, PathSendCode, "", req)
}

func (b *Backend) VerifyEmail(ctx context.Context, req domainauth.VerifyEmailRequest) error {
	return b.post(ctx, PathVerifyEmail, "", req)
}

func (b *Backend) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	ok, err := apiclient.Get[bool](ctx, b.client, PathCheckUsernameFmt+url.PathEscape(username), nil)
	return ok, translate(err)
}

func (b *Backend) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	ok, err := apiclient.Get[bool](ctx, b.client, PathCheckEmailFmt+url.PathEscape(email), nil)
	return ok, translate(err)
}

func (b *Backend) post(ctx context.Context, path, bearer string, body any) error {
	return translate(b.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		Bearer: bearer,
	}, nil))
}

func (b *Backend) normalise(p domainauth.UserProfile) domainauth.UserProfile {
	if b.roles != nil {
		p.Role = b.roles.Map(string(p.Role))
	}
	return p
}

// translate prefixes the domain sentinel for a known envelope code while
// keeping the transport error in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	apiErr, ok := apiclient.AsError(err)
	if !ok || apiErr.Code == 0 {
		return err
	}
	if sentinel := wire.ErrorFor(apiErr.Code); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
