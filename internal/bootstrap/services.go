package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/smartbin/portal/config"
	"github.com/smartbin/portal/internal/data"
	"github.com/smartbin/portal/internal/observability/notify/slack"
	"github.com/smartbin/portal/internal/observability/statsd"
	"github.com/smartbin/portal/internal/ports"
	"github.com/smartbin/portal/internal/service"
	"github.com/smartbin/portal/internal/service/accountnotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Identity      ports.IdentityBackend
	Auth          *service.AuthService
	Sessions      ports.SessionStore
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	AccountNotifier *accountnotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// metrics returns the sink as an interface, nil when metrics are off.
//
//nolint:ireturn // a nil interface keeps metric emission a no-op.
func (o ObservabilityContainer) metrics() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	// Sessions replaces the configured session store (the admin CLI uses a file).
	Sessions ports.SessionStore
	Logger   *slog.Logger
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig, portalURL string, db *sql.DB) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		AccountNotifier: buildAccountNotifier(obsLogger, cfg.Notifications, portalURL, db),
		NotifierConfig:  cfg.Notifications,
	}
}

// buildAccountNotifier fans account events out to the log, Slack and the
// account_events table. The log sink is always present so development runs
// show reset links and verification codes.
func buildAccountNotifier(
	logger *slog.Logger,
	cfg config.ObservabilityNotificationsConfig,
	portalURL string,
	db *sql.DB,
) *accountnotifier.Service {
	notifierLogger := logger.With("component", "account_notifier")
	sinks := []accountnotifier.SinkRegistration{
		{Name: "log", Sink: accountnotifier.LogSink{Logger: notifierLogger}},
	}

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
			PortalURL:  portalURL,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, accountnotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.Record {
		if db == nil {
			logger.Warn("account event recording requested without a database; skipping")
		} else {
			sinks = append(sinks, accountnotifier.SinkRegistration{Name: "postgres", Sink: data.NewAccountEventRepo(db)})
		}
	}

	return accountnotifier.NewService(accountnotifier.Options{
		Logger: notifierLogger,
		Sinks:  sinks,
	})
}

// NewServices initializes the identity backend, the session store and the
// auth service for the configured mode.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	observability := buildObservability(logger, cfg.Observability, cfg.HTTP.BaseURL, deps.DB)

	sessions := deps.Sessions
	if sessions == nil {
		var err error
		if sessions, err = NewSessionStore(cfg.Session, deps.RedisClient, logger); err != nil {
			return ServiceContainer{}, fmt.Errorf("session store: %w", err)
		}
	}

	backend, err := BuildIdentityBackend(IdentityConfig{
		Auth:      cfg.Auth,
		APIClient: cfg.APIClient,
		DB:        deps.DB,
		Sessions:  sessions,
		Notifier:  observability.AccountNotifier,
		Metrics:   observability.metrics(),
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:     cfg.Auth,
		Backend:  backend,
		Sessions: sessions,
		Metrics:  observability.metrics(),
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("auth service: %w", err)
	}

	return ServiceContainer{
		Identity:      backend,
		Auth:          auth,
		Sessions:      sessions,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown serves HTTP until a shutdown signal is received or
// the listener fails, then drains in-flight requests.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(&HTTPServerConfig{
		Config:      cfg.Config,
		Services:    cfg.Services,
		DB:          cfg.DB,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
	})
	return serve(sigCtx, server, cfg.Config.HTTP.ShutdownTimeout, logger)
}

// serve runs server until ctx is done, then shuts it down within timeout.
func serve(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down services...")
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  server,
			Timeout: timeout,
			Logger:  logger,
		})
	})

	return g.Wait()
}
