package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

func TestClientLimiter_RefillsAndIsolatesClients(t *testing.T) {
	l := NewClientLimiter(60, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestClientLimiter_PrunesIdleClients(t *testing.T) {
	l := NewClientLimiter(60, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * limiterIdleTTL)
	l.Allow("b")
	assert.Len(t, l.clients, 1)
}

func TestNewClientLimiter_DisabledWhenNotPositive(t *testing.T) {
	assert.Nil(t, NewClientLimiter(0, 5))

	var called bool
	h := RateLimit(nil, discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.True(t, called)
}

func TestInFlight(t *testing.T) {
	f := NewInFlight()
	require.True(t, f.Begin("k"))
	assert.False(t, f.Begin("k"))
	f.End("k")
	assert.True(t, f.Begin("k"))
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", domainauth.ErrMissingToken},
		{"Bearer abc", "abc", nil},
		{"bearer  abc ", "abc", nil},
		{"Basic abc", "", domainauth.ErrMalformedToken},
		{"Bearer", "", domainauth.ErrMalformedToken},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, err := bearerToken(r)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.header)
			continue
		}
		require.NoError(t, err, tc.header)
		assert.Equal(t, tc.token, got)
	}
}

func TestIsBrowserRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.Header.Set("Accept", "text/html")
	assert.True(t, isBrowserRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	r.Header.Set("Accept", "text/html")
	assert.False(t, isBrowserRequest(r), "identity API is never a browser route")

	r = httptest.NewRequest(http.MethodPost, "/login", nil)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.True(t, isBrowserRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/session", nil)
	assert.False(t, isBrowserRequest(r))
}

func TestRecover_Returns500(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionCookie_KeepsValidAndReplacesMalformed(t *testing.T) {
	var seen string
	h := SessionCookie(CookieConfig{})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = domainauth.SessionIDFromContext(r.Context())
	}))

	valid := "8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: valid})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, valid, seen)
	assert.Empty(t, rec.Result().Cookies())

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "../../etc"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.NotEqual(t, "../../etc", seen)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, seen, rec.Result().Cookies()[0].Value)
}

func TestHealth_ReportsFailingCheck(t *testing.T) {
	h := healthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decodeInto[healthBody](t, rec)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Equal(t, "connection refused", body.Checks["redis"])
}
