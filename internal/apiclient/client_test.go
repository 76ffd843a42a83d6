package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	authmocks "github.com/smartbin/portal/internal/mocks/auth"
	"github.com/smartbin/portal/internal/wire"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, srv *httptest.Server, mut ...func(*Config)) (*Client, *authmocks.MemorySessionStore, *authmocks.RecordingNavigator) {
	t.Helper()
	store := authmocks.NewMemorySessionStore()
	nav := &authmocks.RecordingNavigator{}
	cfg := Config{
		BaseURL:      srv.URL,
		Sessions:     store,
		Navigator:    nav,
		RetryBackoff: time.Millisecond,
	}
	for _, m := range mut {
		m(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c, store, nav
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "ftp://example.com"})
	require.Error(t, err)
}

func TestDo_StampsHeaders(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_123)
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		writeEnvelope(t, w, http.StatusOK, wire.OK(true))
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv, func(cfg *Config) { cfg.Now = func() time.Time { return fixed } })
	store.Seed(domainauth.Session{Token: "tok-1", RefreshToken: "r"})

	ok, err := Get[bool](context.Background(), c, "/auth/check-username", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "Bearer tok-1", seen.Get(HeaderAuthorization))
	assert.Equal(t, strconv.FormatInt(fixed.UnixMilli(), 10), seen.Get(HeaderRequestTime))
	assert.NotEmpty(t, seen.Get(HeaderRequestID))
}

func TestDo_NoSessionNoAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get(HeaderAuthorization)
		writeEnvelope(t, w, http.StatusOK, wire.OK(true))
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	_, err := Get[bool](context.Background(), c, "/x", nil)
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestDo_ExplicitBearerWins(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get(HeaderAuthorization)
		writeEnvelope(t, w, http.StatusOK, wire.OK(true))
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv)
	store.Seed(domainauth.Session{Token: "stored"})

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Bearer: "explicit"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", auth)
}

func TestDo_BusinessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(t, w, http.StatusOK, wire.Fail(wire.CodeInvalidCredentials, "invalid username or password"))
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	_, err := Post[domainauth.LoginResult](context.Background(), c, "/auth/login", domainauth.LoginRequest{Username: "a", Password: "b"})
	require.ErrorIs(t, err, ErrBusiness)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, wire.CodeInvalidCredentials, apiErr.Code)
	assert.Equal(t, "invalid username or password", apiErr.Message)
}

func TestDo_UnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, wire.Fail(wire.CodeTokenExpired, "token expired"))
	}))
	defer srv.Close()

	c, store, nav := newTestClient(t, srv)
	store.Seed(domainauth.Session{Token: "stale"})

	_, err := Get[domainauth.UserProfile](context.Background(), c, "/auth/profile", nil)
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, loaded := store.Current()
	assert.False(t, loaded, "session must be cleared on 401")
	assert.Equal(t, []string{LoginPath}, nav.Paths())

	apiErr, _ := AsError(err)
	assert.Equal(t, wire.CodeTokenExpired, apiErr.Code)
}

func TestDo_StatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
		kind   Kind
	}{
		{http.StatusForbidden, ErrPermissionDenied, KindPermission},
		{http.StatusNotFound, ErrNotFound, KindNotFound},
		{http.StatusInternalServerError, ErrServer, KindServer},
		{http.StatusTeapot, ErrHTTP, KindHTTP},
	}
	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c, store, nav := newTestClient(t, srv)
			store.Seed(domainauth.Session{Token: "keep"})

			err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x"}, nil)
			require.ErrorIs(t, err, tc.want)
			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.status, apiErr.Status)

			_, loaded := store.Current()
			assert.True(t, loaded, "only 401 clears the session")
			assert.Empty(t, nav.Paths())
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, _, _ := newTestClient(t, srv, func(cfg *Config) { cfg.RetryLimit = -1 })
	srv.Close()

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)
	require.ErrorIs(t, err, ErrNetwork)
}

func TestDo_RetriesIdempotentGets(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(t, w, http.StatusOK, wire.OK("ok"))
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	got, err := Get[string](context.Background(), c, "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDo_DoesNotRetryPosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	_, err := Post[string](context.Background(), c, "/x", map[string]string{"a": "b"})
	require.ErrorIs(t, err, ErrHTTP)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_InterceptorErrorAborts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()

	boom := errors.New("boom")
	c, _, _ := newTestClient(t, srv, func(cfg *Config) {
		cfg.Interceptors = []Interceptor{func(context.Context, *http.Request) error { return boom }}
	})
	err := c.Do(context.Background(), Request{Path: "/x"}, nil)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, hits.Load())
}

func TestDo_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(t, w, http.StatusOK, wire.OK(true))
	}))
	defer srv.Close()

	c, _, _ := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, Request{Path: "/x"}, nil)
	require.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_JoinsPaths(t *testing.T) {
	c, err := New(Config{BaseURL: "http://api.local/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://api.local/v1/auth/login", c.resolve("/auth/login", nil))
	assert.Equal(t, "http://api.local/v1/auth/check-email?email=a%40b.c",
		c.resolve("auth/check-email", map[string][]string{"email": {"a@b.c"}}))
}
