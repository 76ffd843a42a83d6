package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/smartbin/portal/internal/debounce"
	"github.com/smartbin/portal/internal/validation"
)

const defaultWatchQuiet = debounce.DefaultQuiet

type availabilityFn func(ctx context.Context, value string) (bool, error)

type availabilityOptions struct {
	Watch bool
	Quiet time.Duration
	Value string
}

func parseAvailabilityFlags(name string, args []string) (availabilityOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts availabilityOptions
	fs.BoolVar(&opts.Watch, "watch", false, "Read candidates line by line from stdin and check each once input settles")
	fs.DurationVar(&opts.Quiet, "quiet", defaultWatchQuiet, "Quiet period before a watched candidate is checked")
	if err := fs.Parse(args); err != nil {
		return availabilityOptions{}, err
	}
	if !opts.Watch {
		if fs.NArg() != 1 {
			return availabilityOptions{}, errors.New("expected exactly one value to check")
		}
		opts.Value = strings.TrimSpace(fs.Arg(0))
	}
	return opts, nil
}

func runCheckUsername(cmdCtx *commandContext, args []string) error {
	return runAvailability(cmdCtx, "check-username", "username", validation.Username(), args,
		func(deps accountDeps) availabilityFn { return deps.Auth.CheckUsernameAvailable })
}

func runCheckEmail(cmdCtx *commandContext, args []string) error {
	return runAvailability(cmdCtx, "check-email", "email", validation.Email(), args,
		func(deps accountDeps) availabilityFn { return deps.Auth.CheckEmailAvailable })
}

func runAvailability(
	cmdCtx *commandContext,
	name, field string,
	rules []validation.Validator,
	args []string,
	pick func(accountDeps) availabilityFn,
) error {
	opts, err := parseAvailabilityFlags(name, args)
	if err != nil {
		return err
	}

	return withAccount(cmdCtx, 0, func(ctx context.Context, deps accountDeps) error {
		check := formatThenCheck(field, rules, pick(deps))
		if !opts.Watch {
			ok, checkErr := check(ctx, opts.Value)
			return printAvailability(cmdCtx.Out, opts.Value, ok, checkErr)
		}
		return watchAvailability(ctx, cmdCtx.In, cmdCtx.Out, opts.Quiet, check)
	})
}

// formatThenCheck rejects malformed values before asking the directory.
func formatThenCheck(field string, rules []validation.Validator, check availabilityFn) availabilityFn {
	return func(ctx context.Context, value string) (bool, error) {
		if err := validation.New().Validate(field, value, rules...).Err(); err != nil {
			return false, err
		}
		return check(ctx, value)
	}
}

func printAvailability(w io.Writer, value string, ok bool, err error) error {
	switch {
	case err != nil:
		return writef(w, "%s: %s\n", value, describeError(err))
	case ok:
		return writef(w, "%s: available\n", value)
	default:
		return writef(w, "%s: taken\n", value)
	}
}

// watchAvailability checks only the value that was current when input
// settled. At EOF the pending value is checked immediately.
func watchAvailability(ctx context.Context, in io.Reader, out io.Writer, quiet time.Duration, check availabilityFn) error {
	var (
		mu        sync.Mutex
		writeErr  error
		lastSeen  string
		delivered = make(chan struct{}, 1)
	)
	settler := debounce.New(ctx, quiet, debounce.CheckFunc[string, bool](check),
		func(v string, ok bool, err error) {
			mu.Lock()
			if werr := printAvailability(out, v, ok, err); werr != nil && writeErr == nil {
				writeErr = werr
			}
			lastSeen = v
			mu.Unlock()
			select {
			case delivered <- struct{}{}:
			default:
			}
		})

	var lastPushed string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		v := strings.TrimSpace(scanner.Text())
		if v == "" {
			continue
		}
		lastPushed = v
		settler.Push(v)
	}

	settler.Flush()
	for !seen(&mu, &lastSeen, lastPushed) {
		select {
		case <-delivered:
		case <-ctx.Done():
			settler.Stop()
			return ctx.Err()
		}
	}
	settler.Stop()

	if err := scanner.Err(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return writeErr
}

func seen(mu *sync.Mutex, last *string, want string) bool {
	mu.Lock()
	defer mu.Unlock()
	return want == "" || *last == want
}
