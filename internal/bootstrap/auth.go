package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smartbin/portal/config"
	"github.com/smartbin/portal/internal/adapters/authroles"
	"github.com/smartbin/portal/internal/adapters/mockidentity"
	"github.com/smartbin/portal/internal/adapters/remoteidentity"
	"github.com/smartbin/portal/internal/apiclient"
	"github.com/smartbin/portal/internal/observability/statsd"
	"github.com/smartbin/portal/internal/ports"
	"github.com/smartbin/portal/internal/service"
)

// IdentityConfig contains the dependencies for building an identity backend.
type IdentityConfig struct {
	Auth      config.AuthConfig
	APIClient config.APIClientConfig
	// DB backs the postgres directory; it may be nil for the memory directory.
	DB *sql.DB
	// Sessions supplies bearer tokens to the remote client and is cleared on 401.
	Sessions ports.SessionStore
	Notifier mockidentity.Notifier
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// BuildIdentityBackend returns the backend selected by AUTH_MODE.
//
//nolint:ireturn // the backend is chosen at runtime.
func BuildIdentityBackend(cfg IdentityConfig) (ports.IdentityBackend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Auth.Mode {
	case config.AuthModeRemote:
		return buildRemoteBackend(cfg, logger)
	case config.AuthModeMock, "":
		return buildMockBackend(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

//nolint:ireturn // keeps BuildIdentityBackend's switch symmetric.
func buildMockBackend(cfg IdentityConfig, logger *slog.Logger) (ports.IdentityBackend, error) {
	dir, err := newUserDirectory(cfg.Auth, cfg.DB)
	if err != nil {
		return nil, err
	}
	codec, err := newTokenCodec(cfg.Auth)
	if err != nil {
		return nil, err
	}

	backend, err := mockidentity.New(mockidentity.Config{
		Directory:    dir,
		Codec:        codec,
		Availability: newAvailabilityChecker(cfg.Auth.Availability, dir),
		Latency:      newLatency(cfg.Auth),
		TokenTTL:     cfg.Auth.TokenTTL,
		Notifier:     cfg.Notifier,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("mock identity: %w", err)
	}

	logger.Info("identity backend ready",
		"mode", config.AuthModeMock,
		"directory", cfg.Auth.Directory,
		"token_codec", cfg.Auth.TokenCodec,
		"availability", cfg.Auth.Availability,
	)
	return backend, nil
}

//nolint:ireturn // keeps BuildIdentityBackend's switch symmetric.
func buildRemoteBackend(cfg IdentityConfig, logger *slog.Logger) (ports.IdentityBackend, error) {
	client, err := apiclient.New(apiclient.Config{
		BaseURL:      cfg.APIClient.BaseURL,
		Timeout:      cfg.APIClient.Timeout,
		RetryLimit:   cfg.APIClient.RetryLimit,
		RetryBackoff: cfg.APIClient.RetryBackoff,
		Sessions:     cfg.Sessions,
		Navigator:    loggingNavigator{logger: logger},
		Metrics:      cfg.Metrics,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	backend, err := remoteidentity.New(client, remoteidentity.WithRoleMapper(roleMapper(cfg.Auth)))
	if err != nil {
		return nil, fmt.Errorf("remote identity: %w", err)
	}

	logger.Info("identity backend ready", "mode", config.AuthModeRemote, "base_url", cfg.APIClient.BaseURL)
	return backend, nil
}

func roleMapper(cfg config.AuthConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{OfficerAliases: cfg.OfficerRoles}
}

// AuthConfig contains configuration for building the auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Backend  ports.IdentityBackend
	Sessions ports.SessionStore
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// BuildAuthService wires the session-aware facade over the identity backend.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.Backend == nil {
		return nil, errors.New("identity backend is required")
	}
	return service.NewAuthService(service.AuthServiceOptions{
		Backend:  cfg.Backend,
		Sessions: cfg.Sessions,
		Roles:    roleMapper(cfg.Auth),
		Metrics:  cfg.Metrics,
		Logger:   cfg.Logger,
		Mode:     string(cfg.Auth.Mode),
	})
}
