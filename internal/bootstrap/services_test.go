package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbin/portal/config"
)

func testAppConfig(services string) *config.AppConfig {
	cfg := &config.AppConfig{
		Services: services,
		Auth:     config.AuthConfig{Mode: config.AuthModeMock},
		Session:  config.SessionConfig{Store: config.SessionStoreMemory, TTL: time.Hour},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0", LoginBurst: 1},
	}
	return cfg
}

func TestGetEnabledServices(t *testing.T) {
	assert.Equal(t, []string{"api", "web"}, GetEnabledServices(testAppConfig("web,api")))
	assert.Equal(t, []string{"web"}, GetEnabledServices(testAppConfig("web")))
	assert.Empty(t, GetEnabledServices(testAppConfig("scheduler")))
	assert.Empty(t, GetEnabledServices(nil))
}

func TestValidateServiceConfig(t *testing.T) {
	require.NoError(t, ValidateServiceConfig(testAppConfig("api")))
	assert.Error(t, ValidateServiceConfig(nil))
	assert.Error(t, ValidateServiceConfig(testAppConfig("")))

	cfg := testAppConfig("api")
	cfg.Auth.TokenCodec = config.TokenCodecJWT
	assert.Error(t, ValidateServiceConfig(cfg))
}

func TestNeedsDatabaseAndRedis(t *testing.T) {
	cfg := testAppConfig("api,web")
	assert.False(t, needsDatabase(cfg))
	assert.False(t, needsRedis(cfg))

	cfg.Auth.Directory = config.DirectoryPostgres
	assert.True(t, needsDatabase(cfg))

	cfg.Auth.Mode = config.AuthModeRemote
	assert.False(t, needsDatabase(cfg), "remote mode never reads the local directory")

	cfg.Observability.Notifications.Record = true
	assert.True(t, needsDatabase(cfg))

	cfg.Session.Store = config.SessionStoreRedis
	assert.True(t, needsRedis(cfg))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestBuildAccountNotifier(t *testing.T) {
	cfg := config.ObservabilityNotificationsConfig{Enabled: true, Record: true}
	n := buildAccountNotifier(discardLogger(), cfg, "http://localhost:8080", nil)
	assert.True(t, n.Enabled(), "log sink is always registered")
}

func TestNewServices_InMemory(t *testing.T) {
	svcs, err := NewServices(&ServiceDeps{Config: testAppConfig("api,web"), Logger: discardLogger()})
	require.NoError(t, err)
	assert.NotNil(t, svcs.Identity)
	assert.NotNil(t, svcs.Auth)
	assert.NotNil(t, svcs.Sessions)
	assert.Nil(t, svcs.Observability.MetricsSink)

	_, err = NewServices(&ServiceDeps{Logger: discardLogger()})
	assert.Error(t, err)
}

func TestNewHTTPServer_RoutesFollowEnabledServices(t *testing.T) {
	cfg := testAppConfig("api")
	svcs, err := NewServices(&ServiceDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)

	server := NewHTTPServer(&HTTPServerConfig{Config: cfg, Services: svcs, Logger: discardLogger()})
	require.NotNil(t, server)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/check-username/newname", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "web routes are off")

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, time.Second, discardLogger()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
