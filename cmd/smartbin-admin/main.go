package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/smartbin/portal/config"
	"github.com/smartbin/portal/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	In     io.Reader
}

func main() {
	logger := bootstrap.InitLogger("warn")

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	if cfg.IsDev {
		logger = bootstrap.InitLogger(cfg.Observability.LogLevel)
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		if writeErr := writef(os.Stderr, "%s: %s\n", cmdName, describeError(runErr)); writeErr != nil {
			logger.Error("print command error failed", "error", writeErr)
		}
		logger.DebugContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the session locally",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Sign out and delete the local session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the signed-in account and its workspace",
			run:         runWhoami,
		},
		"register": {
			name:        "register",
			description: "Create an account",
			run:         runRegister,
		},
		"refresh": {
			name:        "refresh",
			description: "Exchange the stored refresh token for a new token pair",
			run:         runRefresh,
		},
		"forgot-password": {
			name:        "forgot-password",
			description: "Request a password reset link",
			run:         runForgotPassword,
		},
		"reset-password": {
			name:        "reset-password",
			description: "Set a new password with a reset token",
			run:         runResetPassword,
		},
		"change-password": {
			name:        "change-password",
			description: "Change the password of the signed-in account",
			run:         runChangePassword,
		},
		"send-code": {
			name:        "send-code",
			description: "Request a one-time verification code",
			run:         runSendCode,
		},
		"verify-email": {
			name:        "verify-email",
			description: "Confirm an email address with a verification token",
			run:         runVerifyEmail,
		},
		"password-strength": {
			name:        "password-strength",
			description: "Score a password from 0 to 5",
			run:         runPasswordStrength,
		},
		"check-username": {
			name:        "check-username",
			description: "Check whether a username is free (--watch reads names from stdin)",
			run:         runCheckUsername,
		},
		"check-email": {
			name:        "check-email",
			description: "Check whether an email is free (--watch reads addresses from stdin)",
			run:         runCheckEmail,
		},
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed the demo accounts",
			run:         runDBSeed,
		},
		"db-reset": {
			name:        "db-reset",
			description: "Drop the database schema, run migrations, and optionally seed data",
			run:         runDBReset,
		},
		"events": {
			name:        "events",
			description: "List recorded account events for a user",
			run:         runListEvents,
		},
		"list-sessions": {
			name:        "list-sessions",
			description: "Inspect portal sessions stored in Redis",
			run:         runListSessions,
		},
		"clear-sessions": {
			name:        "clear-sessions",
			description: "Delete portal sessions from Redis",
			run:         runClearSessions,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: smartbin-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
