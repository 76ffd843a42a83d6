package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: identity backend, tokens and the API client
//   - database.go: Postgres and Redis
//   - http.go: HTTP server
//   - session.go: session storage
//   - services.go: which services the process runs
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Standalone forces every service on so the API and the portal run in one process.
	Standalone bool `env:"OUTPUT_STANDALONE" envDefault:"false"`

	Auth      AuthConfig
	APIClient APIClientConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP    HTTPConfig
	Session SessionConfig

	// Services is a comma-separated list of services to run (api, web).
	Services string `env:"SERVICES" envDefault:"api,web"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.APIClient.Sanitize()
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.Observability.Sanitize()
	c.detectDevMode()
}

// Validate reports combinations that cannot start.
func (c *AppConfig) Validate() error {
	var errs []error
	if _, err := c.GetEnabledServices(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Mode == AuthModeRemote {
		if err := c.APIClient.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Session.Store == SessionStoreRedis && !c.IsDev && c.Session.EncryptionKey == "" {
		errs = append(errs, errors.New("SESSION_ENCRYPTION_KEY is required for redis sessions outside development"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services. Standalone enables all.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	if c.Standalone {
		all := make(map[ServiceMode]bool)
		for _, m := range ValidServiceModes() {
			all[m] = true
		}
		return all, nil
	}
	return ParseServices(c.Services)
}

// IsAPIEnabled returns true if the identity API is served.
func (c *AppConfig) IsAPIEnabled() bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[ServiceModeAPI]
}

// IsWebEnabled returns true if the portal routes are served.
func (c *AppConfig) IsWebEnabled() bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[ServiceModeWeb]
}
