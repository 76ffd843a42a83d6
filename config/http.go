package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public URL of the portal, used in notification links.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"false"`

	// LoginRatePerMinute bounds login attempts per client IP. Zero disables limiting.
	LoginRatePerMinute int `env:"HTTP_LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginBurst         int `env:"HTTP_LOGIN_BURST"           envDefault:"5"`

	// RequireTerms makes web registration require accepted terms.
	RequireTerms bool `env:"HTTP_REQUIRE_TERMS" envDefault:"true"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.LoginRatePerMinute < 0 {
		h.LoginRatePerMinute = 0
	}
	if h.LoginBurst < 1 {
		h.LoginBurst = 1
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 10 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}
