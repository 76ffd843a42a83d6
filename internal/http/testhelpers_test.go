package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/smartbin/portal/internal/adapters/memdirectory"
	"github.com/smartbin/portal/internal/adapters/mockidentity"
	"github.com/smartbin/portal/internal/adapters/pseudotoken"
	"github.com/smartbin/portal/internal/adapters/session"
	"github.com/smartbin/portal/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockBackend(t *testing.T) *mockidentity.Backend {
	t.Helper()
	b, err := mockidentity.New(mockidentity.Config{
		Directory: memdirectory.New(),
		Codec:     pseudotoken.New(),
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	return b
}

type portal struct {
	handler  http.Handler
	sessions *session.KeyedMemoryStore
}

func newPortal(t *testing.T, mut ...func(*RouterServices)) *portal {
	t.Helper()
	backend := newMockBackend(t)
	sessions := session.NewKeyedMemoryStore()
	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Backend:  backend,
		Sessions: sessions,
		Logger:   discardLogger(),
		Mode:     "mock",
	})
	require.NoError(t, err)

	svcs := RouterServices{Identity: backend, Auth: auth, Logger: discardLogger()}
	for _, m := range mut {
		m(&svcs)
	}
	return &portal{handler: NewRouter(svcs), sessions: sessions}
}

// client is one browser or API caller with a fixed session id.
type client struct {
	sid     string
	browser bool
}

func newClient(browser bool) client {
	return client{sid: uuid.NewString(), browser: browser}
}

func (c client) request(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.sid})
	if c.browser {
		r.Header.Set("Accept", "text/html,application/xhtml+xml")
	} else {
		r.Header.Set("Accept", "application/json")
	}
	return r
}

func (c client) postJSON(target, body string) *http.Request {
	r := c.request(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func (c client) postForm(target string, form url.Values) *http.Request {
	r := c.request(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func (p *portal) serve(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, r)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
