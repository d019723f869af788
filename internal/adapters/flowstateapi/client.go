// Package flowstateapi is the HTTP client for the external FlowState backend.
package flowstateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	"github.com/flowstate/flowstate-dashboard/internal/domain/focus"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

const (
	defaultBaseURL    = "http://localhost:8000"
	defaultTimeout    = 10 * time.Second
	defaultDetailPath = "detail[0].msg || detail"
	maxBodyBytes      = 1 << 20
)

// Operation names used in errors, logs, and metrics.
const (
	OpAuthenticate = "authenticate"
	OpRegister     = "register"
	OpCurrentUser  = "current_user"
	OpListSessions = "list_sessions"
)

// Ensure compile-time conformance to ports.
var _ ports.Backend = (*Client)(nil)

// Observer receives one callback per backend call. status is 0 when no response arrived.
type Observer interface {
	ObserveBackendCall(op string, status int, elapsed time.Duration, err error)
}

// Config captures backend client behaviour.
type Config struct {
	BaseURL string
	// Timeout bounds a single request. Requests are never retried.
	Timeout time.Duration
	// ErrorDetailPath is a JMESPath expression selecting the message from error bodies.
	ErrorDetailPath string
	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
	Evaluator DetailEvaluator
	Observer  Observer
	Logger    *slog.Logger
}

// Client talks to the FlowState backend. A Client is safe for concurrent use;
// WithTokenSource returns a copy bound to one client's stored token.
type Client struct {
	baseURL    string
	timeout    time.Duration
	detailPath string
	base       http.RoundTripper
	evaluator  DetailEvaluator
	observer   Observer
	logger     *slog.Logger

	tokens ports.TokenSource
	http   *http.Client
}

// NewClient builds a backend client. It validates the error detail expression.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("backend base url must be http(s): %q", baseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ev := cfg.Evaluator
	if ev == nil {
		ev = jmespathLibEvaluator{}
	}
	path := strings.TrimSpace(cfg.ErrorDetailPath)
	if path == "" {
		path = defaultDetailPath
	}
	if err := ev.Validate(path); err != nil {
		return nil, fmt.Errorf("invalid error detail path %q: %w", path, err)
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		detailPath: path,
		base:       base,
		evaluator:  ev,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
	c.http = c.newHTTPClient(nil)
	return c, nil
}

// WithTokenSource returns a copy of c whose requests carry the token from tokens.
func (c *Client) WithTokenSource(tokens ports.TokenSource) *Client {
	bound := *c
	bound.tokens = tokens
	bound.http = c.newHTTPClient(tokens)
	return &bound
}

// Factory adapts WithTokenSource to ports.BackendFactory.
func (c *Client) Factory() ports.BackendFactory {
	return func(tokens ports.TokenSource) ports.Backend {
		return c.WithTokenSource(tokens)
	}
}

func (c *Client) newHTTPClient(tokens ports.TokenSource) *http.Client {
	return &http.Client{
		Timeout:   c.timeout,
		Transport: &bearerTransport{base: c.base, tokens: tokens},
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Authenticate posts form-encoded credentials to /token using the OAuth2
// password grant and returns the access token.
func (c *Client) Authenticate(ctx context.Context, creds domainauth.Credentials) (string, error) {
	start := time.Now()
	cfg := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	authed := c.hasToken(ctx)

	tok, err := cfg.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.http), creds.Username, creds.Password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			apiErr := c.apiError(OpAuthenticate, re.Response.StatusCode, re.Body, authed)
			c.observe(OpAuthenticate, re.Response.StatusCode, start, apiErr)
			return "", apiErr
		}
		wrapped := c.transportError(OpAuthenticate, err)
		c.observe(OpAuthenticate, 0, start, wrapped)
		return "", wrapped
	}

	c.observe(OpAuthenticate, http.StatusOK, start, nil)
	return tok.AccessToken, nil
}

// Register posts a JSON registration request. The created profile is discarded.
func (c *Client) Register(ctx context.Context, reg domainauth.Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	return c.do(ctx, request{op: OpRegister, method: http.MethodPost, path: "/register", body: body}, nil)
}

// CurrentUser fetches the profile of the token holder.
func (c *Client) CurrentUser(ctx context.Context) (domainauth.UserProfile, error) {
	var u domainauth.UserProfile
	if err := c.do(ctx, request{op: OpCurrentUser, method: http.MethodGet, path: "/users/me"}, &u); err != nil {
		return domainauth.UserProfile{}, err
	}
	return u, nil
}

// ListSessions fetches the token holder's focus sessions in backend order.
func (c *Client) ListSessions(ctx context.Context) ([]focus.Session, error) {
	var sessions []focus.Session
	if err := c.do(ctx, request{op: OpListSessions, method: http.MethodGet, path: "/sessions"}, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []focus.Session{}
	}
	return sessions, nil
}

type request struct {
	op     string
	method string
	path   string
	body   []byte
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	start := time.Now()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	authed := c.hasToken(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		wrapped := c.transportError(r.op, err)
		c.observe(r.op, 0, start, wrapped)
		return wrapped
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = c.handleErrorResponse(r.op, resp, authed)
		c.observe(r.op, resp.StatusCode, start, err)
		return err
	}

	err = decodeResponse(resp, out)
	if err != nil {
		err = fmt.Errorf("%s: %w", r.op, err)
	}
	c.observe(r.op, resp.StatusCode, start, err)
	return err
}

func (c *Client) hasToken(ctx context.Context) bool {
	if c.tokens == nil {
		return false
	}
	tok, err := c.tokens.Token(ctx)
	return err == nil && tok != ""
}

func (c *Client) handleErrorResponse(op string, resp *http.Response, authed bool) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(
			fmt.Errorf("read %s error response: %w", op, readErr),
			closeErr,
		)
	}
	if closeErr != nil {
		c.log().Debug("close backend error response", "op", op, "error", closeErr)
	}
	return c.apiError(op, resp.StatusCode, respBody, authed)
}

// apiError builds the error for a non-2xx response. Unauthorized responses to
// authenticated requests are additionally tagged token_invalid.
func (c *Client) apiError(op string, status int, body []byte, authed bool) error {
	apiErr := &APIError{
		Op:            op,
		Status:        status,
		Detail:        extractDetail(c.evaluator, c.detailPath, body),
		authenticated: authed,
	}
	c.log().Debug("backend error response", "op", op, "status", status)
	if errors.Is(apiErr, ErrTokenInvalid) {
		return apperrors.TokenInvalid(apiErr)
	}
	return apiErr
}

func (c *Client) transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperrors.Unavailable("backend unreachable", fmt.Errorf("%s: %w", op, err))
}

func (c *Client) observe(op string, status int, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(op, status, time.Since(start), err)
	}
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
			return fmt.Errorf("drain response body: %w", err)
		}
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
