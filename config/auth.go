package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AuthMode selects the identity backend.
type AuthMode string

const (
	// AuthModeMock serves identity from the local mock backend.
	AuthModeMock AuthMode = "mock"
	// AuthModeRemote forwards identity calls to the API at API_BASE_URL.
	AuthModeRemote AuthMode = "remote"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
// "true" and "false" are accepted as the mock toggle.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "mock", "true":
		*a = AuthModeMock
		return nil
	case "remote", "false":
		*a = AuthModeRemote
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: mock, remote)", v)
	}
}

// TokenCodecKind selects how the mock backend issues bearer tokens.
type TokenCodecKind string

const (
	// TokenCodecPseudo issues unsigned demo tokens.
	TokenCodecPseudo TokenCodecKind = "pseudo"
	// TokenCodecJWT issues HMAC-signed JWTs.
	TokenCodecJWT TokenCodecKind = "jwt"
)

// UnmarshalText implements encoding.TextUnmarshaler for TokenCodecKind.
func (k *TokenCodecKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch TokenCodecKind(v) {
	case TokenCodecPseudo, TokenCodecJWT:
		*k = TokenCodecKind(v)
		return nil
	default:
		return fmt.Errorf("invalid TokenCodecKind: %q (valid options: pseudo, jwt)", v)
	}
}

// AvailabilityMode selects how username and email availability is answered.
type AvailabilityMode string

const (
	// AvailabilityDenylist reports a fixed list of names as taken.
	AvailabilityDenylist AvailabilityMode = "denylist"
	// AvailabilityDirectory consults the user directory.
	AvailabilityDirectory AvailabilityMode = "directory"
)

// UnmarshalText implements encoding.TextUnmarshaler for AvailabilityMode.
func (m *AvailabilityMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch AvailabilityMode(v) {
	case AvailabilityDenylist, AvailabilityDirectory:
		*m = AvailabilityMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AvailabilityMode: %q (valid options: denylist, directory)", v)
	}
}

// DirectoryKind selects where the mock backend keeps accounts.
type DirectoryKind string

const (
	// DirectoryMemory keeps accounts in process memory.
	DirectoryMemory DirectoryKind = "memory"
	// DirectoryPostgres keeps accounts in the users table.
	DirectoryPostgres DirectoryKind = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for DirectoryKind.
func (k *DirectoryKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch DirectoryKind(v) {
	case DirectoryMemory, DirectoryPostgres:
		*k = DirectoryKind(v)
		return nil
	default:
		return fmt.Errorf("invalid DirectoryKind: %q (valid options: memory, postgres)", v)
	}
}

// AuthConfig groups identity backend settings.
type AuthConfig struct {
	Mode         AuthMode         `env:"AUTH_MODE"         envDefault:"mock"`
	TokenCodec   TokenCodecKind   `env:"AUTH_TOKEN_CODEC"  envDefault:"pseudo"`
	Availability AvailabilityMode `env:"AUTH_AVAILABILITY" envDefault:"denylist"`
	Directory    DirectoryKind    `env:"AUTH_DIRECTORY"    envDefault:"memory"`

	// JWTSecret signs tokens when TokenCodec=jwt.
	JWTSecret string        `env:"AUTH_JWT_SECRET"`
	JWTIssuer string        `env:"AUTH_JWT_ISSUER" envDefault:"smartbin"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL"  envDefault:"1h"`

	// OfficerRoles are extra raw role names treated as officer.
	OfficerRoles []string `env:"AUTH_OFFICER_ROLES" envSeparator:","`

	// SimulateLatency adds the mock backend's artificial delays.
	SimulateLatency bool `env:"AUTH_SIMULATE_LATENCY" envDefault:"false"`

	// BcryptCost is the password hashing cost for the postgres directory.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// Bcrypt cost bounds accepted by golang.org/x/crypto/bcrypt.
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.JWTSecret = strings.TrimSpace(a.JWTSecret)
	if a.TokenTTL <= 0 {
		a.TokenTTL = time.Hour
	}
	if a.BcryptCost < minBcryptCost {
		a.BcryptCost = minBcryptCost
	}
	if a.BcryptCost > maxBcryptCost {
		a.BcryptCost = maxBcryptCost
	}
	roles := a.OfficerRoles[:0]
	for _, r := range a.OfficerRoles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			roles = append(roles, r)
		}
	}
	a.OfficerRoles = roles
}

// Validate reports settings the selected mode cannot run with.
func (a *AuthConfig) Validate() error {
	if a.Mode == AuthModeMock && a.TokenCodec == TokenCodecJWT && a.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required when AUTH_TOKEN_CODEC=jwt")
	}
	return nil
}

// APIClientConfig configures the client used when AUTH_MODE=remote.
type APIClientConfig struct {
	BaseURL      string        `env:"API_BASE_URL"       envDefault:"http://localhost:3001"`
	Timeout      time.Duration `env:"API_TIMEOUT"        envDefault:"10s"`
	RetryLimit   int           `env:"API_RETRY_LIMIT"    envDefault:"2"`
	RetryBackoff time.Duration `env:"API_RETRY_BACKOFF"  envDefault:"200ms"`
}

// Sanitize applies guardrails to API client values.
func (c *APIClientConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 200 * time.Millisecond
	}
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (c *APIClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q must be an absolute http(s) URL", c.BaseURL)
	}
	return nil
}
