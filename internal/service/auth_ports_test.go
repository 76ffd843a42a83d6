package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	portmocks "github.com/smartbin/portal/internal/mocks"
)

func newPortMockService(t *testing.T) (*AuthService, *portmocks.MockIdentityBackend, *portmocks.MockSessionStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := portmocks.NewMockIdentityBackend(ctrl)
	sessions := portmocks.NewMockSessionStore(ctrl)
	svc, err := NewAuthService(AuthServiceOptions{Backend: backend, Sessions: sessions})
	require.NoError(t, err)
	return svc, backend, sessions
}

func TestAuthService_Logout_ClearsEvenWhenBackendAndClearFail(t *testing.T) {
	svc, backend, sessions := newPortMockService(t)
	ctx := context.Background()

	gomock.InOrder(
		sessions.EXPECT().Load(gomock.Any()).Return(domainauth.Session{Token: "tok"}, nil),
		backend.EXPECT().Logout(gomock.Any(), "tok").Return(errors.New("network down")),
		sessions.EXPECT().Clear(gomock.Any()).Return(errors.New("disk full")),
	)

	assert.NoError(t, svc.Logout(ctx))
}

func TestAuthService_FetchProfile_UsesStoredToken(t *testing.T) {
	svc, backend, sessions := newPortMockService(t)
	ctx := context.Background()

	sessions.EXPECT().Load(gomock.Any()).Return(domainauth.Session{Token: "stored-token"}, nil)
	backend.EXPECT().FetchProfile(gomock.Any(), "stored-token").
		Return(domainauth.UserProfile{ID: "1", Username: "admin", Role: domainauth.RoleAdmin}, nil)

	profile, err := svc.FetchProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.Username)
}

func TestAuthService_FetchProfile_StoreFailureIsNotMissingToken(t *testing.T) {
	svc, _, sessions := newPortMockService(t)

	sessions.EXPECT().Load(gomock.Any()).Return(domainauth.Session{}, errors.New("io error"))

	_, err := svc.FetchProfile(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainauth.ErrMissingToken)
}

func TestAuthService_Refresh_ExplicitTokenSkipsStoreLookup(t *testing.T) {
	svc, backend, sessions := newPortMockService(t)
	ctx := context.Background()

	backend.EXPECT().Refresh(gomock.Any(), "explicit").
		Return(domainauth.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)
	// storePair looks for a session to update; none is stored.
	sessions.EXPECT().Load(gomock.Any()).Return(domainauth.Session{}, domainauth.ErrNoSession)

	pair, err := svc.Refresh(ctx, "explicit")
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.AccessToken)
	assert.Equal(t, "Bearer", pair.TokenType)
}

func TestAuthService_Login_BackendErrorSkipsSave(t *testing.T) {
	svc, backend, _ := newPortMockService(t)

	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(domainauth.LoginResult{}, domainauth.ErrInvalidCredentials)
	// No Save expectation: a call would fail the test.

	_, err := svc.Login(context.Background(), domainauth.LoginRequest{Username: "admin", Password: "wrong"})
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
}
