package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreKind selects where the portal keeps per-browser sessions.
type SessionStoreKind string

const (
	// SessionStoreMemory keeps sessions in process memory.
	SessionStoreMemory SessionStoreKind = "memory"
	// SessionStoreRedis keeps sessions in Redis.
	SessionStoreRedis SessionStoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch SessionStoreKind(v) {
	case SessionStoreMemory, SessionStoreRedis:
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreKind: %q (valid options: memory, redis)", v)
	}
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	Store SessionStoreKind `env:"SESSION_STORE" envDefault:"memory"`
	// TTL bounds how long a stored session lives; it matches the refresh lifetime.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	// EncryptionKey seals session records at rest. Empty stores plain JSON.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`
	// FilePath is where the admin CLI keeps its session. Empty uses the user config dir.
	FilePath string `env:"SESSION_FILE"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 7 * 24 * time.Hour
	}
	s.EncryptionKey = strings.TrimSpace(s.EncryptionKey)
	s.FilePath = strings.TrimSpace(s.FilePath)
}
