package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/smartbin/portal/config"
	"github.com/smartbin/portal/internal/adapters/session"
	"github.com/smartbin/portal/internal/apiclient"
	"github.com/smartbin/portal/internal/bootstrap"
	domainauth "github.com/smartbin/portal/internal/domain/auth"
	apperrors "github.com/smartbin/portal/internal/errors"
	"github.com/smartbin/portal/internal/service"
	"github.com/smartbin/portal/internal/util"
	"github.com/smartbin/portal/internal/validation"
)

const defaultAccountTimeout = 30 * time.Second

// accountDeps is the facade plus whatever it needed opened.
type accountDeps struct {
	Auth        *service.AuthService
	SessionPath string
	close       func() error
}

func (d accountDeps) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

// openAccount builds the auth facade over a file session so successive
// invocations share one signed-in state.
func openAccount(cmdCtx *commandContext) (accountDeps, error) {
	cfg := cmdCtx.Config

	path := cfg.Session.FilePath
	if path == "" {
		var err error
		if path, err = session.DefaultFilePath(); err != nil {
			return accountDeps{}, err
		}
	}
	var opts []session.FileOption
	if sealer := bootstrap.CreateSessionSealer(cfg.Session.EncryptionKey, cmdCtx.Logger); sealer != nil {
		opts = append(opts, session.WithSealer(sealer))
	}
	store, err := session.NewFileStore(path, opts...)
	if err != nil {
		return accountDeps{}, err
	}

	// The CLI never serves, so only the directory database matters here.
	infraCfg := cfg
	infraCfg.Session.Store = config.SessionStoreMemory
	infra, err := bootstrap.ConnectInfrastructure(cmdCtx.Ctx, &infraCfg, cmdCtx.Logger)
	if err != nil {
		return accountDeps{}, err
	}

	svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:   &cfg,
		DB:       infra.DB,
		Sessions: store,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return accountDeps{}, errors.Join(err, closeInfra(infra.DB, infra.Redis))
	}

	return accountDeps{
		Auth:        svcs.Auth,
		SessionPath: store.Path(),
		close: func() error {
			return errors.Join(svcs.Observability.MetricsSink.Close(), closeInfra(infra.DB, infra.Redis))
		},
	}, nil
}

// withAccount runs f with the facade under a signal-aware timeout.
func withAccount(cmdCtx *commandContext, timeout time.Duration, f func(ctx context.Context, deps accountDeps) error) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	deps, err := openAccount(&commandContext{
		Ctx:    ctx,
		Logger: cmdCtx.Logger,
		Config: cmdCtx.Config,
		Out:    cmdCtx.Out,
		In:     cmdCtx.In,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := deps.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close account deps failed", "error", cerr)
		}
	}()
	return f(ctx, deps)
}

type loginOptions struct {
	Username string
	Password string
}

func parseLoginFlags(args []string, in io.Reader) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Username, "username", "", "Username or email")
	fs.StringVar(&opts.Password, "password", "", "Password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	if opts.Username == "" && fs.NArg() > 0 {
		opts.Username = fs.Arg(0)
	}
	if opts.Password == "" && in != nil {
		line, err := readLine(in)
		if err != nil {
			return loginOptions{}, fmt.Errorf("read password: %w", err)
		}
		opts.Password = line
	}
	opts.Username = strings.TrimSpace(opts.Username)
	return opts, nil
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args, cmdCtx.In)
	if err != nil {
		return err
	}
	req := domainauth.LoginRequest{Username: opts.Username, Password: opts.Password}
	if err = validation.Login(req); err != nil {
		return err
	}

	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		start := time.Now()
		sess, loginErr := deps.Auth.Login(ctx, req)
		if loginErr != nil {
			return loginErr
		}
		ws := domainauth.WorkspaceForRole(sess.User.Role)
		return writef(cmdCtx.Out, "Signed in as %s (%s) in %s. Workspace: %s\nSession stored at %s\n",
			sess.User.Username, sess.User.Role, util.FormatElapsed(time.Since(start)), ws.Home, deps.SessionPath)
	})
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if err := deps.Auth.Logout(ctx); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "Signed out.")
	})
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if _, err := deps.Auth.CurrentSession(ctx); err != nil {
			return err
		}
		profile, err := deps.Auth.FetchProfile(ctx)
		if err != nil {
			return err
		}
		return printProfile(cmdCtx.Out, profile)
	})
}

func printProfile(w io.Writer, p domainauth.UserProfile) error {
	ws := domainauth.WorkspaceForRole(p.Role)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", p.ID},
		{"Username", p.Username},
		{"Email", p.Email},
		{"Nickname", p.Nickname},
		{"Role", string(p.Role)},
		{"Status", string(p.Status)},
		{"Workspace", string(ws.Name)},
		{"Home", ws.Home},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type registerOptions struct {
	Request    domainauth.RegisterRequest
	AgreeTerms bool
}

func parseRegisterFlags(args []string) (registerOptions, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts registerOptions
	fs.StringVar(&opts.Request.Username, "username", "", "Username (letters, digits, underscore)")
	fs.StringVar(&opts.Request.Email, "email", "", "Email address")
	fs.StringVar(&opts.Request.Password, "password", "", "Password")
	fs.StringVar(&opts.Request.ConfirmPassword, "confirm", "", "Password confirmation")
	fs.StringVar(&opts.Request.Phone, "phone", "", "Mobile number (optional)")
	fs.StringVar(&opts.Request.Company, "company", "", "Company (optional)")
	fs.StringVar(&opts.Request.VerificationCode, "code", "", "Verification code (optional)")
	fs.BoolVar(&opts.AgreeTerms, "agree-terms", false, "Accept the terms of service")
	if err := fs.Parse(args); err != nil {
		return registerOptions{}, err
	}
	return opts, nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	opts, err := parseRegisterFlags(args)
	if err != nil {
		return err
	}
	if _, err = validation.Register(opts.Request, validation.RegisterOptions{
		RequireTerms:  cmdCtx.Config.HTTP.RequireTerms,
		TermsAccepted: opts.AgreeTerms,
	}); err != nil {
		return err
	}

	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		receipt, regErr := deps.Auth.Register(ctx, opts.Request)
		if regErr != nil {
			return regErr
		}
		return writef(cmdCtx.Out, "Registered %s (id %s). Sign in with: smartbin-admin login --username %s\n",
			receipt.Username, receipt.UserID, receipt.Username)
	})
}

func runRefresh(cmdCtx *commandContext, _ []string) error {
	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		sess, err := deps.Auth.CurrentSession(ctx)
		if err != nil {
			return err
		}
		pair, err := deps.Auth.Refresh(ctx, sess.RefreshToken)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Token refreshed (%s, expires in %ds).\n", pair.TokenType, pair.ExpiresIn)
	})
}

func runForgotPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	email := fs.String("email", "", "Account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.New().Validate("email", *email, validation.Email()...).Err(); err != nil {
		return err
	}

	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if err := deps.Auth.ForgotPassword(ctx, domainauth.ForgotPasswordRequest{Email: *email}); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "If the address is registered, a reset link is on its way.")
	})
}

func runResetPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var req domainauth.ResetPasswordRequest
	fs.StringVar(&req.Token, "token", "", "Reset token from the email")
	fs.StringVar(&req.NewPassword, "new", "", "New password")
	fs.StringVar(&req.ConfirmPassword, "confirm", "", "New password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.ResetPassword(req); err != nil {
		return err
	}

	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if err := deps.Auth.ResetPassword(ctx, req); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "Password reset.")
	})
}

func runChangePassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var req domainauth.ChangePasswordRequest
	fs.StringVar(&req.CurrentPassword, "current", "", "Current password")
	fs.StringVar(&req.NewPassword, "new", "", "New password")
	fs.StringVar(&req.ConfirmPassword, "confirm", "", "New password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.ChangePassword(req); err != nil {
		return err
	}

	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if err := deps.Auth.ChangePassword(ctx, req); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "Password changed.")
	})
}

func parseSendCodeFlags(args []string) (domainauth.VerificationCodeRequest, error) {
	fs := flag.NewFlagSet("send-code", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var contact, channel, purpose string
	fs.StringVar(&contact, "contact", "", "Email address or phone number")
	fs.StringVar(&channel, "type", string(domainauth.CodeChannelEmail), "Delivery channel: email or sms")
	fs.StringVar(&purpose, "purpose", string(domainauth.PurposeRegister), "register, login, reset_password, change_phone or change_email")
	if err := fs.Parse(args); err != nil {
		return domainauth.VerificationCodeRequest{}, err
	}

	req := domainauth.VerificationCodeRequest{
		Contact: strings.TrimSpace(contact),
		Type:    domainauth.CodeChannel(strings.ToLower(channel)),
		Purpose: domainauth.CodePurpose(strings.ToLower(purpose)),
	}
	if req.Contact == "" {
		return req, apperrors.ValidationField("contact", "Contact is required.")
	}
	switch req.Type {
	case domainauth.CodeChannelEmail, domainauth.CodeChannelSMS:
	default:
		return req, apperrors.ValidationField("type", fmt.Sprintf("Unknown channel %q.", channel))
	}
	switch req.Purpose {
	case domainauth.PurposeRegister, domainauth.PurposeLogin, domainauth.PurposeResetPassword,
		domainauth.PurposeChangePhone, domainauth.PurposeChangeEmail:
	default:
		return req, apperrors.ValidationField("purpose", fmt.Sprintf("Unknown purpose %q.", purpose))
	}
	return req, nil
}

func runSendCode(cmdCtx *commandContext, args []string) error {
	req, err := parseSendCodeFlags(args)
	if err != nil {
		return err
	}
	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if sendErr := deps.Auth.SendVerificationCode(ctx, req); sendErr != nil {
			return sendErr
		}
		return writef(cmdCtx.Out, "Verification code sent by %s.\n", req.Type)
	})
}

func runVerifyEmail(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("verify-email", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	token := fs.String("token", "", "Verification token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*token) == "" {
		return apperrors.ValidationField("token", "Token is required.")
	}
	return withAccount(cmdCtx, defaultAccountTimeout, func(ctx context.Context, deps accountDeps) error {
		if err := deps.Auth.VerifyEmail(ctx, domainauth.VerifyEmailRequest{Token: *token}); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "Email verified.")
	})
}

func runPasswordStrength(cmdCtx *commandContext, args []string) error {
	password := strings.Join(args, " ")
	if password == "" {
		line, err := readLine(cmdCtx.In)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = line
	}
	score, level := validation.Strength(password)
	return writef(cmdCtx.Out, "%d/5 %s\n", score, level)
}

// describeError renders err for a terminal user.
func describeError(err error) string {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeValidation:
		if appErr.Field != "" {
			return appErr.Field + ": " + appErr.Message
		}
		return appErr.Message
	case errors.Is(err, domainauth.ErrNoSession):
		return "not signed in; run smartbin-admin login"
	case errors.Is(err, apiclient.ErrAuthenticationFailed):
		return "session expired; run smartbin-admin login"
	default:
		return err.Error()
	}
}
