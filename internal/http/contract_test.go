package httpx_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbin/portal/internal/adapters/memdirectory"
	"github.com/smartbin/portal/internal/adapters/mockidentity"
	"github.com/smartbin/portal/internal/adapters/pseudotoken"
	"github.com/smartbin/portal/internal/adapters/remoteidentity"
	"github.com/smartbin/portal/internal/apiclient"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	httpx "github.com/smartbin/portal/internal/http"
	authmocks "github.com/smartbin/portal/internal/mocks/auth"
	"github.com/smartbin/portal/internal/service"
)

// remoteOverMock serves the identity API from the in-memory backend and
// returns a remote backend pointed at it, so both sides of the wire are real.
func remoteOverMock(t *testing.T) (*remoteidentity.Backend, *authmocks.MemorySessionStore, *authmocks.RecordingNavigator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	local, err := mockidentity.New(mockidentity.Config{
		Directory: memdirectory.New(),
		Codec:     pseudotoken.New(),
		Logger:    logger,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(httpx.NewRouter(httpx.RouterServices{Identity: local, Logger: logger}))
	t.Cleanup(srv.Close)

	store := authmocks.NewMemorySessionStore()
	nav := &authmocks.RecordingNavigator{}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:      srv.URL,
		Sessions:     store,
		Navigator:    nav,
		RetryBackoff: time.Millisecond,
		Logger:       logger,
	})
	require.NoError(t, err)
	remote, err := remoteidentity.New(client)
	require.NoError(t, err)
	return remote, store, nav
}

func TestContract_LoginAndProfile(t *testing.T) {
	remote, _, _ := remoteOverMock(t)
	ctx := context.Background()

	res, err := remote.Login(ctx, domainauth.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "1", res.User.ID)
	assert.Equal(t, domainauth.WorkspaceOfficer, domainauth.WorkspaceForRole(res.User.Role).Name)

	profile, err := remote.FetchProfile(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@smartbin.com", profile.Email)

	pair, err := remote.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, domainauth.DefaultTokenType, pair.TokenType)

	require.NoError(t, remote.Logout(ctx, res.AccessToken))
}

func TestContract_DomainErrorsSurviveTheWire(t *testing.T) {
	remote, _, _ := remoteOverMock(t)
	ctx := context.Background()

	_, err := remote.Login(ctx, domainauth.LoginRequest{Username: "admin", Password: "wrong"})
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)

	req := domainauth.RegisterRequest{
		Username: "admin", Email: "another@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	}
	_, err = remote.Register(ctx, req)
	require.ErrorIs(t, err, domainauth.ErrDuplicateUsername)

	req.Username, req.Email = "someone", "admin@smartbin.com"
	_, err = remote.Register(ctx, req)
	require.ErrorIs(t, err, domainauth.ErrDuplicateEmail)
}

func TestContract_RegisterReceiptHasNoPassword(t *testing.T) {
	remote, _, _ := remoteOverMock(t)

	receipt, err := remote.Register(context.Background(), domainauth.RegisterRequest{
		Username: "newcomer", Email: "newcomer@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "newcomer", receipt.Username)
	assert.NotEmpty(t, receipt.UserID)
}

func TestContract_Availability(t *testing.T) {
	remote, _, _ := remoteOverMock(t)
	ctx := context.Background()

	ok, err := remote.CheckUsernameAvailable(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = remote.CheckUsernameAvailable(ctx, "brand_new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = remote.CheckEmailAvailable(ctx, "admin@smartbin.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContract_RejectedTokenClearsSession(t *testing.T) {
	remote, store, nav := remoteOverMock(t)
	svc, err := service.NewAuthService(service.AuthServiceOptions{Backend: remote, Sessions: store})
	require.NoError(t, err)

	store.Seed(domainauth.Session{Token: "garbage", RefreshToken: "r", User: domainauth.UserProfile{ID: "1"}})

	_, err = svc.FetchProfile(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthenticationFailed)
	assert.ErrorIs(t, err, domainauth.ErrMalformedToken)

	_, loaded := store.Current()
	assert.False(t, loaded)
	assert.Equal(t, []string{apiclient.LoginPath}, nav.Paths())
}
