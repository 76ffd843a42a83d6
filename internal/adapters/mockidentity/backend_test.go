package mockidentity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbin/portal/internal/adapters/memdirectory"
	"github.com/smartbin/portal/internal/adapters/pseudotoken"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/observability/notify"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.AccountEvent
}

func (c *captureNotifier) Notify(_ context.Context, ev notify.AccountEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func newTestBackend(t *testing.T, opts ...func(*Config)) *Backend {
	t.Helper()
	cfg := Config{
		Directory: memdirectory.New(),
		Codec:     pseudotoken.New(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	b, err := New(cfg)
	require.NoError(t, err)
	return b
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{Codec: pseudotoken.New()})
	require.Error(t, err)
	_, err = New(Config{Directory: memdirectory.New()})
	require.Error(t, err)
}

func TestBackend_Login_Admin(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.Login(ctx, domainauth.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "admin", res.User.Username)
	assert.Equal(t, domainauth.RoleAdmin, res.User.Role)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, 3600, res.ExpiresIn)

	claims, err := pseudotoken.New().Decode(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	refresh, err := pseudotoken.New().Decode(res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh.UserID)
}

func TestBackend_Login_ByEmail(t *testing.T) {
	b := newTestBackend(t)
	res, err := b.Login(context.Background(), domainauth.LoginRequest{Username: "cleaner@example.com", Password: "cleaner123"})
	require.NoError(t, err)
	assert.Equal(t, "2", res.User.ID)
}

func TestBackend_Login_WrongPassword(t *testing.T) {
	b := newTestBackend(t)
	res, err := b.Login(context.Background(), domainauth.LoginRequest{Username: "admin", Password: "wrong"})
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Empty(t, res.AccessToken)
}

func TestBackend_Login_Disabled(t *testing.T) {
	dir := memdirectory.New(memdirectory.WithRecords([]domainauth.UserRecord{
		{ID: "1", Username: "gone", Email: "gone@example.com", Password: "pw", Status: domainauth.StatusInactive},
	}))
	b := newTestBackend(t, func(c *Config) { c.Directory = dir })
	_, err := b.Login(context.Background(), domainauth.LoginRequest{Username: "gone", Password: "pw"})
	require.ErrorIs(t, err, domainauth.ErrAccountDisabled)
}

func TestBackend_Register(t *testing.T) {
	n := &captureNotifier{}
	b := newTestBackend(t, func(c *Config) { c.Notifier = n })
	ctx := context.Background()

	receipt, err := b.Register(ctx, domainauth.RegisterRequest{
		Username: "new_user", Email: "new@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "3", receipt.UserID)
	assert.Equal(t, "new_user", receipt.Username)
	require.Len(t, n.events, 1)
	assert.Equal(t, notify.EventRegistered, n.events[0].Kind)

	res, err := b.Login(ctx, domainauth.LoginRequest{Username: "new_user", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleUser, res.User.Role)
}

func TestBackend_Register_Duplicates(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.Register(ctx, domainauth.RegisterRequest{Username: "admin", Email: "x@example.com", Password: "pw1234"})
	require.ErrorIs(t, err, domainauth.ErrDuplicateUsername)

	_, err = b.Register(ctx, domainauth.RegisterRequest{Username: "x_user", Email: "admin@smartbin.com", Password: "pw1234"})
	require.ErrorIs(t, err, domainauth.ErrDuplicateEmail)
}

func TestBackend_FetchProfile(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.FetchProfile(ctx, "")
	require.ErrorIs(t, err, domainauth.ErrMissingToken)

	_, err = b.FetchProfile(ctx, "abc")
	require.ErrorIs(t, err, domainauth.ErrMalformedToken)

	orphan, err := pseudotoken.New().Issue("99", time.Hour)
	require.NoError(t, err)
	_, err = b.FetchProfile(ctx, orphan)
	require.ErrorIs(t, err, domainauth.ErrUserNotFound)

	res, err := b.Login(ctx, domainauth.LoginRequest{Username: "cleaner", Password: "cleaner123"})
	require.NoError(t, err)
	profile, err := b.FetchProfile(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "cleaner", profile.Username)
}

func TestBackend_Refresh(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.Login(ctx, domainauth.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	pair, err := b.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, pair.TokenType)
	assert.Zero(t, pair.ExpiresIn)

	claims, err := pseudotoken.New().Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)

	_, err = b.Refresh(ctx, "")
	require.ErrorIs(t, err, domainauth.ErrMissingToken)
}

func TestBackend_Availability_Denylist(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	ok, err := b.CheckUsernameAvailable(ctx, "Admin")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.CheckUsernameAvailable(ctx, "admin2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.CheckUsernameAvailable(ctx, "cleaner")
	require.NoError(t, err)
	assert.True(t, ok, "denylist does not consult the directory")

	ok, err = b.CheckEmailAvailable(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackend_Availability_Directory(t *testing.T) {
	dir := memdirectory.New()
	b := newTestBackend(t, func(c *Config) {
		c.Directory = dir
		c.Availability = DirectoryChecker{Directory: dir}
	})
	ctx := context.Background()

	ok, err := b.CheckUsernameAvailable(ctx, "cleaner")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.CheckUsernameAvailable(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBackend_PasswordFlowsNotify(t *testing.T) {
	n := &captureNotifier{}
	b := newTestBackend(t, func(c *Config) { c.Notifier = n })
	ctx := context.Background()

	require.NoError(t, b.ForgotPassword(ctx, domainauth.ForgotPasswordRequest{Email: "admin@smartbin.com"}))
	require.NoError(t, b.ResetPassword(ctx, domainauth.ResetPasswordRequest{Token: "t", NewPassword: "n", ConfirmPassword: "n"}))
	require.NoError(t, b.SendVerificationCode(ctx, domainauth.VerificationCodeRequest{
		Contact: "13800138000", Type: domainauth.CodeChannelSMS, Purpose: domainauth.PurposeRegister,
	}))
	require.NoError(t, b.VerifyEmail(ctx, domainauth.VerifyEmailRequest{Token: "t"}))

	kinds := []string{}
	for _, ev := range n.events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []string{notify.EventPasswordResetRequested, notify.EventVerificationCodeSent}, kinds)
}

func TestBackend_LatencyHonoursContext(t *testing.T) {
	b := newTestBackend(t, func(c *Config) { c.Latency = DefaultLatency() })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := b.Login(ctx, domainauth.LoginRequest{Username: "admin", Password: "admin123"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
