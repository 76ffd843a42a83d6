package ports

// Package ports defines interfaces (hexagonal ports) for identity and session behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

// IdentityBackend performs account operations. The in-memory backend and the
// remote backend return the same shapes and the same domain errors.
type IdentityBackend interface {
	Login(ctx context.Context, req domainauth.LoginRequest) (domainauth.LoginResult, error)
	Register(ctx context.Context, req domainauth.RegisterRequest) (domainauth.RegistrationReceipt, error)
	FetchProfile(ctx context.Context, token string) (domainauth.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error)
	Logout(ctx context.Context, token string) error

	ForgotPassword(ctx context.Context, req domainauth.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req domainauth.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, token string, req domainauth.ChangePasswordRequest) error
	SendVerificationCode(ctx context.Context, req domainauth.VerificationCodeRequest) error
	VerifyEmail(ctx context.Context, req domainauth.VerifyEmailRequest) error

	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
}

// SessionStore persists the single client session record.
// Load returns domainauth.ErrNoSession when nothing is stored.
type SessionStore interface {
	Load(ctx context.Context) (domainauth.Session, error)
	Save(ctx context.Context, sess domainauth.Session) error
	Clear(ctx context.Context) error
}

// TokenCodec issues and decodes bearer tokens.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Decode(token string) (domainauth.TokenClaims, error)
}

// UserDirectory stores account records.
type UserDirectory interface {
	// FindByCredential matches login against username or email and checks the password.
	FindByCredential(ctx context.Context, login, password string) (domainauth.UserRecord, error)
	FindByID(ctx context.Context, id string) (domainauth.UserRecord, error)
	// Create enforces username then email uniqueness at insertion time.
	Create(ctx context.Context, in domainauth.NewUser) (domainauth.UserRecord, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// AvailabilityChecker answers advisory "is this name free" questions.
type AvailabilityChecker interface {
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
}

// Navigator performs a forced client navigation (e.g. to the login page).
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// RoleMapper normalises raw role strings from a backend.
type RoleMapper interface {
	Map(raw string) domainauth.Role
}
