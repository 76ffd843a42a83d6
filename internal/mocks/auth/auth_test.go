package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

func TestStubIdentityBackend_Defaults(t *testing.T) {
	stub := &StubIdentityBackend{}
	ctx := context.Background()

	res, err := stub.Login(ctx, domainauth.LoginRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.AccessToken)

	ok, err := stub.CheckUsernameAvailable(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, stub.Calls("Login"))
	assert.Equal(t, 0, stub.Calls("Logout"))
}

func TestStubIdentityBackend_CustomFunc(t *testing.T) {
	boom := errors.New("boom")
	stub := &StubIdentityBackend{
		LogoutFunc: func(context.Context, string) error { return boom },
	}
	require.ErrorIs(t, stub.Logout(context.Background(), "t"), boom)
	assert.Equal(t, 1, stub.Calls("Logout"))
}

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, domainauth.ErrNoSession)

	sess := domainauth.Session{Token: "t", RefreshToken: "r", User: domainauth.UserProfile{ID: "1"}}
	require.NoError(t, store.Save(ctx, sess))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Clear(ctx))
	_, ok := store.Current()
	assert.False(t, ok)

	saves, clears := store.Counts()
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1, clears)
}

func TestMemorySessionStore_InjectedErrors(t *testing.T) {
	store := NewMemorySessionStore()
	store.SaveErr = errors.New("disk full")
	require.Error(t, store.Save(context.Background(), domainauth.Session{Token: "t"}))
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestRecordingNavigator(t *testing.T) {
	nav := &RecordingNavigator{}
	assert.Nil(t, nav.Paths())
	nav.Navigate(context.Background(), "/login")
	assert.Equal(t, []string{"/login"}, nav.Paths())
}

func TestStaticRoleMapper(t *testing.T) {
	m := StaticRoleMapper{
		Roles:    map[string]domainauth.Role{"officer": domainauth.RoleOfficer},
		Fallback: domainauth.RoleUser,
	}
	assert.Equal(t, domainauth.RoleOfficer, m.Map(" Officer "))
	assert.Equal(t, domainauth.RoleUser, m.Map("janitor"))
}
