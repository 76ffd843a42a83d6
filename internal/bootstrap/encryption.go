package bootstrap

import (
	"log/slog"

	"github.com/smartbin/portal/internal/cryptoutil"
)

// CreateSessionSealer creates an AES-GCM sealer for session records from the
// provided key. An empty key leaves records unsealed (nil sealer); an unusable
// key falls back to the plain sealer with a warning.
//
//nolint:ireturn // Returning interface is intentional for sealer abstraction
func CreateSessionSealer(key string, logger *slog.Logger) cryptoutil.Sealer {
	if key == "" {
		return nil
	}

	raw, err := cryptoutil.KeyFromString(key)
	if err == nil {
		var s *cryptoutil.AESGCMSealer
		if s, err = cryptoutil.NewAESGCMSealer(raw); err == nil {
			return s
		}
	}
	if logger != nil {
		logger.Warn("failed to create session sealer, storing sessions unsealed", "error", err)
	}
	return cryptoutil.PlainSealer{}
}
