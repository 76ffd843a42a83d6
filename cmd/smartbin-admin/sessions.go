package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartbin/portal/internal/bootstrap"
	"github.com/smartbin/portal/internal/cryptoutil"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/util"
)

const (
	sessionScanCount   = 100
	sessionDeleteBatch = 100
	sessionCmdTimeout  = 2 * time.Minute
)

type clearSessionsOptions struct {
	DryRun bool
	Yes    bool
}

type sessionEntry struct {
	ID       string
	Username string
	Role     string
	TTL      time.Duration
}

func sessionPattern() string { return bootstrap.SessionKeyPrefix + "*" }

func withRedis(cmdCtx *commandContext, f func(ctx context.Context, client redis.UniversalClient) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, sessionCmdTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()
	return f(ctx, client)
}

func runListSessions(cmdCtx *commandContext, _ []string) error {
	sealer := bootstrap.CreateSessionSealer(cmdCtx.Config.Session.EncryptionKey, cmdCtx.Logger)
	return withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		cmdCtx.Logger.Info("scanning redis", "pattern", sessionPattern())
		entries, err := collectSessions(ctx, client, sealer, cmdCtx.Logger)
		if err != nil {
			return err
		}
		return printSessions(cmdCtx.Out, entries)
	})
}

func collectSessions(
	ctx context.Context,
	client redis.UniversalClient,
	sealer cryptoutil.Sealer,
	logger *slog.Logger,
) ([]sessionEntry, error) {
	var entries []sessionEntry
	iter := client.Scan(ctx, 0, sessionPattern(), sessionScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		entry := sessionEntry{ID: strings.TrimPrefix(key, bootstrap.SessionKeyPrefix)}

		ttl, err := client.TTL(ctx, key).Result()
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch TTL", "key", key, "error", err)
		}
		entry.TTL = ttl

		raw, err := client.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			logger.WarnContext(ctx, "failed to read session", "key", key, "error", err)
		default:
			var sess domainauth.Session
			if openErr := cryptoutil.OpenJSON(sealer, raw, &sess); openErr != nil {
				entry.Username = "(unreadable)"
			} else {
				entry.Username = sess.User.Username
				entry.Role = string(sess.User.Role)
			}
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return entries, nil
}

func printSessions(w io.Writer, entries []sessionEntry) error {
	if err := writef(w, "\nPortal sessions in Redis\n"); err != nil {
		return err
	}
	if len(entries) == 0 {
		return writeln(w, "(no sessions found)")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "SESSION\tUSER\tROLE\tTTL"); err != nil {
		return err
	}
	for _, e := range entries {
		user, role := e.Username, e.Role
		if user == "" {
			user = "-"
		}
		if role == "" {
			role = "-"
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\n", e.ID, user, role, util.FormatTTL(e.TTL)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\nTotal sessions: %d\n", len(entries))
}

func parseClearSessionsFlags(args []string) (clearSessionsOptions, error) {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts clearSessionsOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Report how many sessions would be removed")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return clearSessionsOptions{}, err
	}
	return opts, nil
}

type clearSessionsConfirmOptions struct {
	opts clearSessionsOptions
}

func (c clearSessionsConfirmOptions) IsDryRun() bool { return c.opts.DryRun }
func (c clearSessionsConfirmOptions) IsYes() bool    { return c.opts.Yes }
func (c clearSessionsConfirmOptions) GetWarning() string {
	return "WARNING: this signs out every portal user with a Redis-backed session."
}
func (c clearSessionsConfirmOptions) GetTarget() string { return "keys matching " + sessionPattern() }

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearSessionsFlags(args)
	if err != nil {
		return err
	}
	if confirmErr := confirmAction(cmdCtx, clearSessionsConfirmOptions{opts}, "clear portal sessions"); confirmErr != nil {
		return confirmErr
	}

	return withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		matched, deleted, clearErr := clearSessions(ctx, client, opts.DryRun)
		if clearErr != nil {
			return clearErr
		}
		if opts.DryRun {
			return writef(cmdCtx.Out, "Dry run: %d session(s) would be removed.\n", matched)
		}
		cmdCtx.Logger.Info("clear sessions complete", "matched", matched, "deleted", deleted)
		return writef(cmdCtx.Out, "Removed %d of %d session(s).\n", deleted, matched)
	})
}

func clearSessions(ctx context.Context, client redis.UniversalClient, dryRun bool) (int, int64, error) {
	var (
		matched int
		deleted int64
		batch   []string
	)
	flush := func() error {
		if len(batch) == 0 || dryRun {
			batch = batch[:0]
			return nil
		}
		n, err := client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	iter := client.Scan(ctx, 0, sessionPattern(), sessionScanCount).Iterator()
	for iter.Next(ctx) {
		matched++
		batch = append(batch, iter.Val())
		if len(batch) >= sessionDeleteBatch {
			if err := flush(); err != nil {
				return matched, deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return matched, deleted, fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return matched, deleted, err
	}
	return matched, deleted, nil
}
