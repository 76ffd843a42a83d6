package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/observability/metrics"
	"github.com/smartbin/portal/internal/observability/statsd"
	"github.com/smartbin/portal/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend  ports.IdentityBackend
	Sessions ports.SessionStore
	// Roles, when set, normalises the role of every profile the backend returns.
	Roles   ports.RoleMapper
	Metrics statsd.Sink
	Logger  *slog.Logger
	// Mode tags metrics with the active backend (mock or remote).
	Mode string
}

// AuthService is the single entry point for account operations. It calls the
// configured identity backend and keeps the session record in step with it.
type AuthService struct {
	backend  ports.IdentityBackend
	sessions ports.SessionStore
	roles    ports.RoleMapper
	metrics  statsd.Sink
	logger   *slog.Logger
	mode     string

	refreshes singleflight.Group
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Backend == nil {
		return nil, errors.New("identity backend is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "auth_service"),
		mode:     opts.Mode,
	}, nil
}

// Login authenticates the credentials and persists the resulting session.
// On failure nothing is stored.
func (s *AuthService) Login(ctx context.Context, req domainauth.LoginRequest) (sess domainauth.Session, err error) {
	defer s.observe("login", time.Now(), &err)

	res, err := s.backend.Login(ctx, req)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("login: %w", err)
	}
	res.User = s.normalise(res.User)

	sess = res.Session()
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", saveErr)
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", sess.User.ID, "role", string(sess.User.Role))
	return sess, nil
}

// Register creates an account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req domainauth.RegisterRequest) (receipt domainauth.RegistrationReceipt, err error) {
	defer s.observe("register", time.Now(), &err)

	receipt, err = s.backend.Register(ctx, req)
	if err != nil {
		return domainauth.RegistrationReceipt{}, fmt.Errorf("register: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", receipt.UserID)
	return receipt, nil
}

// FetchProfile returns the profile of the session owner.
func (s *AuthService) FetchProfile(ctx context.Context) (profile domainauth.UserProfile, err error) {
	defer s.observe("fetch_profile", time.Now(), &err)

	token, err := s.accessToken(ctx)
	if err != nil {
		return domainauth.UserProfile{}, err
	}
	profile, err = s.backend.FetchProfile(ctx, token)
	if err != nil {
		return domainauth.UserProfile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return s.normalise(profile), nil
}

// Refresh exchanges a refresh token for a new pair. An empty argument uses
// the stored refresh token. Missing token type and lifetime are defaulted and
// the stored session, if any, receives the new pair. Concurrent refreshes of
// the same token share one backend call.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair domainauth.TokenPair, err error) {
	defer s.observe("refresh", time.Now(), &err)

	if refreshToken == "" {
		sess, loadErr := s.sessions.Load(ctx)
		if loadErr != nil || sess.RefreshToken == "" {
			return domainauth.TokenPair{}, domainauth.ErrMissingToken
		}
		refreshToken = sess.RefreshToken
	}

	v, err, shared := s.refreshes.Do(refreshToken, func() (any, error) {
		p, rErr := s.backend.Refresh(ctx, refreshToken)
		if rErr != nil {
			return domainauth.TokenPair{}, rErr
		}
		p = p.WithDefaults()
		if upErr := s.storePair(ctx, p); upErr != nil {
			return domainauth.TokenPair{}, upErr
		}
		return p, nil
	})
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	if shared {
		s.logger.DebugContext(ctx, "refresh coalesced")
	}
	pair, _ = v.(domainauth.TokenPair)
	return pair, nil
}

func (s *AuthService) storePair(ctx context.Context, p domainauth.TokenPair) error {
	sess, err := s.sessions.Load(ctx)
	if errors.Is(err, domainauth.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	sess.Token = p.AccessToken
	sess.RefreshToken = p.RefreshToken
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout ends the session. The backend call is best effort; the local
// record is cleared on every path and a backend failure is only logged.
func (s *AuthService) Logout(ctx context.Context) (err error) {
	defer s.observe("logout", time.Now(), &err)

	sess, loadErr := s.sessions.Load(ctx)
	if loadErr == nil && sess.Token != "" {
		if logoutErr := s.backend.Logout(ctx, sess.Token); logoutErr != nil {
			s.logger.WarnContext(ctx, "backend logout failed", "error", logoutErr)
		}
	}

	if clearErr := s.sessions.Clear(ctx); clearErr != nil {
		s.logger.WarnContext(ctx, "clear session failed", "error", clearErr)
	}
	return nil
}

// ForgotPassword starts the password reset flow.
func (s *AuthService) ForgotPassword(ctx context.Context, req domainauth.ForgotPasswordRequest) (err error) {
	defer s.observe("forgot_password", time.Now(), &err)
	if err = s.backend.ForgotPassword(ctx, req); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

// ResetPassword completes the password reset flow.
func (s *AuthService) ResetPassword(ctx context.Context, req domainauth.ResetPasswordRequest) (err error) {
	defer s.observe("reset_password", time.Now(), &err)
	if err = s.backend.ResetPassword(ctx, req); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// ChangePassword changes the password of the session owner.
func (s *AuthService) ChangePassword(ctx context.Context, req domainauth.ChangePasswordRequest) (err error) {
	defer s.observe("change_password", time.Now(), &err)

	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}
	if err = s.backend.ChangePassword(ctx, token, req); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// SendVerificationCode requests a one-time code over email or SMS.
func (s *AuthService) SendVerificationCode(ctx context.Context, req domainauth.VerificationCodeRequest) (err error) {
	defer s.observe("send_verification_code", time.Now(), &err)
	if err = s.backend.SendVerificationCode(ctx, req); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// VerifyEmail confirms an email address.
func (s *AuthService) VerifyEmail(ctx context.Context, req domainauth.VerifyEmailRequest) (err error) {
	defer s.observe("verify_email", time.Now(), &err)
	if err = s.backend.VerifyEmail(ctx, req); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

// CheckUsernameAvailable is advisory; Register remains authoritative.
func (s *AuthService) CheckUsernameAvailable(ctx context.Context, username string) (ok bool, err error) {
	defer s.observe("check_username", time.Now(), &err)
	ok, err = s.backend.CheckUsernameAvailable(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return ok, nil
}

// CheckEmailAvailable is advisory; Register remains authoritative.
func (s *AuthService) CheckEmailAvailable(ctx context.Context, email string) (ok bool, err error) {
	defer s.observe("check_email", time.Now(), &err)
	ok, err = s.backend.CheckEmailAvailable(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return ok, nil
}

// CurrentSession returns the stored session. A record without a token or
// profile is reported as domainauth.ErrNoSession.
func (s *AuthService) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return domainauth.Session{}, err
	}
	if !sess.Valid() {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	return sess, nil
}

func (s *AuthService) accessToken(ctx context.Context) (string, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, domainauth.ErrNoSession) {
			return "", domainauth.ErrMissingToken
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	if sess.Token == "" {
		return "", domainauth.ErrMissingToken
	}
	return sess.Token, nil
}

func (s *AuthService) normalise(p domainauth.UserProfile) domainauth.UserProfile {
	if s.roles != nil {
		p.Role = s.roles.Map(string(p.Role))
	}
	return p
}

func (s *AuthService) observe(op string, start time.Time, errp *error) {
	result := metrics.ResultSuccess
	var err error
	if errp != nil && *errp != nil {
		err = *errp
		result = metrics.ResultError
	}
	metrics.EmitAuthOperation(s.metrics, metrics.AuthMetric{
		Operation: op,
		Mode:      s.mode,
		Result:    result,
		Duration:  time.Since(start),
		Err:       err,
	})
}
