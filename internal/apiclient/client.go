// Package apiclient is the HTTP client the portal uses to reach the identity
// API. It stamps every request, unwraps the response envelope, classifies
// failures and clears the session when the server answers 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smartbin/portal/internal/observability/metrics"
	"github.com/smartbin/portal/internal/observability/statsd"
	"github.com/smartbin/portal/internal/ports"
	"github.com/smartbin/portal/internal/wire"
)

// Defaults applied by New.
const (
	DefaultBaseURL      = "http://localhost:3001"
	DefaultTimeout      = 10 * time.Second
	DefaultRetryLimit   = 2
	DefaultRetryBackoff = 200 * time.Millisecond

	// LoginPath is where the navigator is sent after a 401.
	LoginPath = "/login"

	maxResponseBytes = 1 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RetryLimit bounds additional attempts for idempotent GET requests.
	// Zero selects DefaultRetryLimit; negative disables retries.
	RetryLimit   int
	RetryBackoff time.Duration

	Sessions  ports.SessionStore
	Navigator ports.Navigator
	Metrics   statsd.Sink
	Logger    *slog.Logger

	HTTPClient   *http.Client
	Now          func() time.Time
	Interceptors []Interceptor
}

// Client performs enveloped JSON calls against the identity API.
type Client struct {
	base         *url.URL
	http         *http.Client
	retryLimit   int
	retryBackoff time.Duration

	sessions     ports.SessionStore
	navigator    ports.Navigator
	metrics      statsd.Sink
	logger       *slog.Logger
	interceptors []Interceptor
}

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Bearer overrides the session token for this call.
	Bearer string
}

// New constructs a Client, applying defaults for unset fields.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	retries := cfg.RetryLimit
	switch {
	case retries == 0:
		retries = DefaultRetryLimit
	case retries < 0:
		retries = 0
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	chain := []Interceptor{
		BearerFromSession(cfg.Sessions, logger),
		RequestTime(now),
		RequestID(),
	}
	chain = append(chain, cfg.Interceptors...)
	chain = append(chain, LogRequest(logger))

	return &Client{
		base:         base,
		http:         hc,
		retryLimit:   retries,
		retryBackoff: backoff,
		sessions:     cfg.Sessions,
		navigator:    cfg.Navigator,
		metrics:      cfg.Metrics,
		logger:       logger,
		interceptors: chain,
	}, nil
}

// Call performs req and decodes the envelope data into T.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	err := c.Do(ctx, req, &out)
	return out, err
}

// Get is Call with GET.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return Call[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post is Call with POST and a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return Call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Do performs req and decodes the envelope data into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	target := c.resolve(req.Path, req.Query)
	attempts := 0
	var (
		status int
		err    error
	)
	for {
		attempts++
		status, err = c.once(ctx, method, target, req.Bearer, payload, out)
		if err == nil || !c.shouldRetry(method, err, attempts) {
			break
		}
		c.logger.DebugContext(ctx, "retrying api request",
			"method", method, "path", req.Path, "attempt", attempts, "error", err)
		if waitErr := c.backoff(ctx, attempts); waitErr != nil {
			err = &Error{Kind: KindNetwork, Err: waitErr}
			break
		}
	}

	kind := ""
	if apiErr, ok := AsError(err); ok {
		kind = apiErr.Kind.String()
	}
	metrics.EmitAPIRequest(c.metrics, metrics.RequestMetric{
		Method:   method,
		Path:     req.Path,
		Status:   status,
		Kind:     kind,
		Attempts: attempts,
		Duration: time.Since(start),
	})
	return err
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) once(ctx context.Context, method, target, bearer string, payload []byte, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set(HeaderAuthorization, "Bearer "+bearer)
	}
	for _, ic := range c.interceptors {
		if icErr := ic(ctx, httpReq); icErr != nil {
			return 0, icErr
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}

	c.logger.DebugContext(ctx, "api response",
		"method", method, "status", resp.StatusCode, "request_id", httpReq.Header.Get(HeaderRequestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, c.statusError(ctx, resp.StatusCode, raw)
	}
	return resp.StatusCode, decodeEnvelope(raw, out)
}

func decodeEnvelope(raw []byte, out any) error {
	var env wire.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if env.Code != wire.SuccessCode {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Kind: KindBusiness, Status: http.StatusOK, Code: env.Code, Message: msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) statusError(ctx context.Context, status int, raw []byte) error {
	e := &Error{Status: status}
	var env wire.Envelope[json.RawMessage]
	if json.Unmarshal(raw, &env) == nil {
		e.Code = env.Code
		e.Message = env.Message
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
		c.expireSession(ctx)
	case status == http.StatusForbidden:
		e.Kind = KindPermission
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusInternalServerError:
		e.Kind = KindServer
	default:
		e.Kind = KindHTTP
	}
	return e
}

// expireSession clears the stored session and sends the user to the login
// entry point.
func (c *Client) expireSession(ctx context.Context) {
	if c.sessions != nil {
		if err := c.sessions.Clear(ctx); err != nil {
			c.logger.WarnContext(ctx, "clear session after 401", "error", err)
		}
	}
	if c.navigator != nil {
		c.navigator.Navigate(ctx, LoginPath)
	}
}

func (c *Client) shouldRetry(method string, err error, attempts int) bool {
	if method != http.MethodGet || attempts > c.retryLimit {
		return false
	}
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	if apiErr.Kind == KindNetwork {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	switch apiErr.Status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt) * c.retryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
