package mockidentity

// Package mockidentity provides a local IdentityBackend over a UserDirectory
// and a TokenCodec. It stands in for the remote identity API in development
// and tests, with simulated latency so callers exercise their loading paths.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/observability/notify"
	"github.com/smartbin/portal/internal/ports"
)

const (
	refreshPrefix   = "refresh-"
	defaultTokenTTL = time.Hour
)

var _ ports.IdentityBackend = (*Backend)(nil)

// Notifier receives account lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event notify.AccountEvent)
}

// Config wires the backend. Directory and Codec are required.
type Config struct {
	Directory    ports.UserDirectory
	Codec        ports.TokenCodec
	Availability ports.AvailabilityChecker // defaults to DefaultDenylist
	Latency      Latency                   // zero value disables simulated latency
	TokenTTL     time.Duration             // default 1h
	Notifier     Notifier
	Logger       *slog.Logger
}

// Backend implements ports.IdentityBackend locally.
type Backend struct {
	dir      ports.UserDirectory
	codec    ports.TokenCodec
	avail    ports.AvailabilityChecker
	latency  Latency
	ttl      time.Duration
	notifier Notifier
	logger   *slog.Logger
}

// New constructs a Backend from Config.
func New(cfg Config) (*Backend, error) {
	if cfg.Directory == nil {
		return nil, errors.New("mock identity: Directory is required")
	}
	if cfg.Codec == nil {
		return nil, errors.New("mock identity: Codec is required")
	}
	avail := cfg.Availability
	if avail == nil {
		avail = DefaultDenylist()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		dir:      cfg.Directory,
		codec:    cfg.Codec,
		avail:    avail,
		latency:  cfg.Latency,
		ttl:      ttl,
		notifier: cfg.Notifier,
		logger:   logger.With("component", "mock_identity"),
	}, nil
}

// Login matches the credentials against the directory and issues a token pair.
func (b *Backend) Login(ctx context.Context, req domainauth.LoginRequest) (domainauth.LoginResult, error) {
	if err := sleep(ctx, b.latency.Login); err != nil {
		return domainauth.LoginResult{}, err
	}

	rec, err := b.dir.FindByCredential(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domainauth.ErrRecordNotFound) {
			return domainauth.LoginResult{}, domainauth.ErrInvalidCredentials
		}
		return domainauth.LoginResult{}, fmt.Errorf("lookup credentials: %w", err)
	}
	if err := domainauth.CheckStatus(rec); err != nil {
		return domainauth.LoginResult{}, err
	}

	pair, err := b.issuePair(rec.ID)
	if err != nil {
		return domainauth.LoginResult{}, err
	}
	return domainauth.LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    domainauth.DefaultTokenType,
		ExpiresIn:    int(b.ttl.Seconds()),
		User:         rec.Profile(),
	}, nil
}

// Register appends a new account.
func (b *Backend) Register(ctx context.Context, req domainauth.RegisterRequest) (domainauth.RegistrationReceipt, error) {
	if err := sleep(ctx, b.latency.Register); err != nil {
		return domainauth.RegistrationReceipt{}, err
	}

	rec, err := b.dir.Create(ctx, req.NewUser())
	if err != nil {
		return domainauth.RegistrationReceipt{}, err
	}

	b.notify(ctx, notify.AccountEvent{
		Kind:     notify.EventRegistered,
		UserID:   rec.ID,
		Username: rec.Username,
		Contact:  rec.Email,
		Channel:  string(domainauth.CodeChannelEmail),
	})
	return domainauth.ReceiptFor(rec), nil
}

// FetchProfile resolves the token subject to a profile.
func (b *Backend) FetchProfile(ctx context.Context, token string) (domainauth.UserProfile, error) {
	if token == "" {
		return domainauth.UserProfile{}, domainauth.ErrMissingToken
	}
	if err := sleep(ctx, b.latency.Profile); err != nil {
		return domainauth.UserProfile{}, err
	}

	claims, err := b.codec.Decode(token)
	if err != nil {
		return domainauth.UserProfile{}, err
	}
	rec, err := b.lookup(ctx, claims.UserID)
	if err != nil {
		return domainauth.UserProfile{}, err
	}
	return rec.Profile(), nil
}

// Refresh re-issues both tokens for the refresh token subject. Token type and
// lifetime are left empty; the caller supplies defaults.
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	if refreshToken == "" {
		return domainauth.TokenPair{}, domainauth.ErrMissingToken
	}
	if err := sleep(ctx, b.latency.Refresh); err != nil {
		return domainauth.TokenPair{}, err
	}

	claims, err := b.codec.Decode(refreshToken)
	if err != nil {
		return domainauth.TokenPair{}, err
	}
	rec, err := b.lookup(ctx, strings.TrimPrefix(claims.UserID, refreshPrefix))
	if err != nil {
		return domainauth.TokenPair{}, err
	}
	return b.issuePair(rec.ID)
}

// Logout has nothing to revoke locally.
func (b *Backend) Logout(ctx context.Context, _ string) error {
	return ctx.Err()
}

// ForgotPassword simulates sending a reset link.
func (b *Backend) ForgotPassword(ctx context.Context, req domainauth.ForgotPasswordRequest) error {
	if err := sleep(ctx, b.latency.Password); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "password reset email sent", "email", req.Email)
	b.notify(ctx, notify.AccountEvent{
		Kind:    notify.EventPasswordResetRequested,
		Contact: req.Email,
		Channel: string(domainauth.CodeChannelEmail),
	})
	return nil
}

// ResetPassword simulates a successful reset.
func (b *Backend) ResetPassword(ctx context.Context, _ domainauth.ResetPasswordRequest) error {
	if err := sleep(ctx, b.latency.Password); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "password reset completed")
	return nil
}

// ChangePassword simulates a successful change for the token holder.
func (b *Backend) ChangePassword(ctx context.Context, token string, _ domainauth.ChangePasswordRequest) error {
	if err := sleep(ctx, b.latency.Password); err != nil {
		return err
	}
	ev := notify.AccountEvent{Kind: notify.EventPasswordChanged}
	if claims, err := b.codec.Decode(token); err == nil {
		ev.UserID = claims.UserID
	}
	b.logger.InfoContext(ctx, "password changed", "user_id", ev.UserID)
	b.notify(ctx, ev)
	return nil
}

// SendVerificationCode simulates code delivery.
func (b *Backend) SendVerificationCode(ctx context.Context, req domainauth.VerificationCodeRequest) error {
	if err := sleep(ctx, b.latency.SendCode); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "verification code sent", "contact", req.Contact, "purpose", req.Purpose)
	b.notify(ctx, notify.AccountEvent{
		Kind:     notify.EventVerificationCodeSent,
		Contact:  req.Contact,
		Channel:  string(req.Type),
		Metadata: map[string]string{"purpose": string(req.Purpose)},
	})
	return nil
}

// VerifyEmail simulates a successful confirmation.
func (b *Backend) VerifyEmail(ctx context.Context, _ domainauth.VerifyEmailRequest) error {
	if err := sleep(ctx, b.latency.VerifyEmail); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "email verified")
	return nil
}

// CheckUsernameAvailable consults the configured availability policy.
func (b *Backend) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if err := sleep(ctx, b.latency.Availability); err != nil {
		return false, err
	}
	return b.avail.UsernameAvailable(ctx, username)
}

// CheckEmailAvailable consults the configured availability policy.
func (b *Backend) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	if err := sleep(ctx, b.latency.Availability); err != nil {
		return false, err
	}
	return b.avail.EmailAvailable(ctx, email)
}

func (b *Backend) issuePair(userID string) (domainauth.TokenPair, error) {
	access, err := b.codec.Issue(userID, b.ttl)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := b.codec.Issue(refreshPrefix+userID, b.ttl)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domainauth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (b *Backend) lookup(ctx context.Context, id string) (domainauth.UserRecord, error) {
	rec, err := b.dir.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainauth.ErrRecordNotFound) {
			return domainauth.UserRecord{}, domainauth.ErrUserNotFound
		}
		return domainauth.UserRecord{}, fmt.Errorf("lookup user %s: %w", id, err)
	}
	return rec, nil
}

func (b *Backend) notify(ctx context.Context, ev notify.AccountEvent) {
	if b.notifier == nil {
		return
	}
	b.notifier.Notify(ctx, ev)
}
