package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/smartbin/portal/config"
	"github.com/smartbin/portal/internal/adapters/jwttoken"
	"github.com/smartbin/portal/internal/adapters/memdirectory"
	"github.com/smartbin/portal/internal/adapters/mockidentity"
	"github.com/smartbin/portal/internal/adapters/pseudotoken"
	redisadapter "github.com/smartbin/portal/internal/adapters/redis"
	"github.com/smartbin/portal/internal/adapters/session"
	"github.com/smartbin/portal/internal/data"
	"github.com/smartbin/portal/internal/ports"
)

// SessionKeyPrefix namespaces portal sessions in a shared Redis.
const SessionKeyPrefix = "smartbin:session:"

// newUserDirectory selects the account directory behind the mock backend.
//
//nolint:ireturn // the directory kind is chosen at runtime.
func newUserDirectory(cfg config.AuthConfig, db *sql.DB) (ports.UserDirectory, error) {
	switch cfg.Directory {
	case config.DirectoryPostgres:
		if db == nil {
			return nil, errors.New("postgres directory requires a database connection")
		}
		repo := data.NewUserRepo(db)
		repo.HashCost = cfg.BcryptCost
		return repo, nil
	case config.DirectoryMemory, "":
		return memdirectory.New(), nil
	default:
		return nil, fmt.Errorf("unknown directory %q", cfg.Directory)
	}
}

// newTokenCodec selects how the mock backend mints bearer tokens.
//
//nolint:ireturn // the codec kind is chosen at runtime.
func newTokenCodec(cfg config.AuthConfig) (ports.TokenCodec, error) {
	switch cfg.TokenCodec {
	case config.TokenCodecJWT:
		codec, err := jwttoken.New(jwttoken.Config{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer})
		if err != nil {
			return nil, fmt.Errorf("jwt codec: %w", err)
		}
		return codec, nil
	case config.TokenCodecPseudo, "":
		return pseudotoken.New(), nil
	default:
		return nil, fmt.Errorf("unknown token codec %q", cfg.TokenCodec)
	}
}

// newAvailabilityChecker selects how availability questions are answered.
//
//nolint:ireturn // the checker kind is chosen at runtime.
func newAvailabilityChecker(mode config.AvailabilityMode, dir ports.UserDirectory) ports.AvailabilityChecker {
	if mode == config.AvailabilityDirectory {
		return mockidentity.DirectoryChecker{Directory: dir}
	}
	return mockidentity.DefaultDenylist()
}

func newLatency(cfg config.AuthConfig) mockidentity.Latency {
	if cfg.SimulateLatency {
		return mockidentity.DefaultLatency()
	}
	return mockidentity.Latency{}
}

// NewSessionStore selects the per-browser session store for the portal.
// Both stores key records by the session id carried in the request context.
//
//nolint:ireturn // the store kind is chosen at runtime.
func NewSessionStore(cfg config.SessionConfig, client redis.UniversalClient, logger *slog.Logger) (ports.SessionStore, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		if client == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		var opts []redisadapter.Option
		if sealer := CreateSessionSealer(cfg.EncryptionKey, logger); sealer != nil {
			opts = append(opts, redisadapter.WithSealer(sealer))
		}
		return redisadapter.NewSessionStoreWithPrefix(client, SessionKeyPrefix, cfg.TTL, opts...), nil
	case config.SessionStoreMemory, "":
		return session.NewKeyedMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// loggingNavigator records forced navigations. On the server the redirect
// itself is rendered by the web handlers once the session is gone.
type loggingNavigator struct {
	logger *slog.Logger
}

func (n loggingNavigator) Navigate(ctx context.Context, path string) {
	n.logger.InfoContext(ctx, "session expired by identity api", "redirect", path)
}
