// Package rest implements the authenticated HTTP client over the panel
// backend. All business logic lives behind this boundary; the client only
// shapes requests, attaches the session token, and maps failures onto the
// panel error taxonomy.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/observability"
	"github.com/wealthocean/tradepanel/internal/schema"
	"github.com/wealthocean/tradepanel/internal/session"
)

// The backend binds the session token through a case-insensitive header
// lookup documented in its lowercase form; the client sets exactly one
// spelling and lets the transport canonicalise it.
const authTokenHeader = "x-auth-token"

const errorBodyLimit = 4 << 10

// Client is the authenticated panel backend client.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	store   session.Store
	limiter *rate.Limiter
	logger  observability.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit throttles outbound requests to rps per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client against baseURL using store for session tokens.
func NewClient(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errs.New("rest", errs.CodeInvalid, errs.WithMessage("base URL required"))
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errs.New("rest", errs.CodeInvalid, errs.WithMessage("base URL must be absolute"))
	}
	if store == nil {
		return nil, errs.New("rest", errs.CodeInvalid, errs.WithMessage("session store required"))
	}
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   store,
		limiter: nil,
		logger:  observability.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Store exposes the injected session store.
func (c *Client) Store() session.Store { return c.store }

func (c *Client) endpoint(path string, query url.Values) string {
	ref := *c.baseURL
	ref.Path = strings.TrimRight(ref.Path, "/") + path
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return ref.String()
}

// do issues one request. A nil body sends no payload; a non-nil out decodes
// the 2xx response body into out. Failures map onto the errs taxonomy: 401
// to CodeAuth, other statuses via FromStatus, transport errors to
// CodeNetwork.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errs.New(op, errs.CodeNetwork, errs.WithCause(err))
		}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.Token(); token != "" {
		req.Header.Set(authTokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.New(op, errs.CodeNetwork, errs.WithCause(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return errs.FromStatus(op, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyLimit))
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return errs.New(op, errs.CodeBackend, errs.WithMessage("malformed response"), errs.WithCause(err))
	}
	return nil
}

// Register creates a panel user and stores the issued session token.
func (c *Client) Register(ctx context.Context, req schema.RegisterRequest) (schema.LoginResponse, error) {
	var resp schema.LoginResponse
	if err := c.do(ctx, "rest/register", http.MethodPost, "/users/register", nil, req, &resp); err != nil {
		return schema.LoginResponse{}, err
	}
	if err := c.store.SetToken(resp.Token); err != nil {
		return schema.LoginResponse{}, fmt.Errorf("store session token: %w", err)
	}
	return resp, nil
}

// Login authenticates the panel user and stores the issued session token.
func (c *Client) Login(ctx context.Context, creds schema.Credentials) (schema.LoginResponse, error) {
	var resp schema.LoginResponse
	if err := c.do(ctx, "rest/login", http.MethodPost, "/users/login", nil, creds, &resp); err != nil {
		return schema.LoginResponse{}, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return schema.LoginResponse{}, errs.New("rest/login", errs.CodeBackend, errs.WithMessage("login response missing token"))
	}
	if err := c.store.SetToken(resp.Token); err != nil {
		return schema.LoginResponse{}, fmt.Errorf("store session token: %w", err)
	}
	c.logger.Info("session established", observability.F("username", resp.Username))
	return resp, nil
}

// Me returns the username bound to the current session token.
func (c *Client) Me(ctx context.Context) (string, error) {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.do(ctx, "rest/me", http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

// Logout drops the local session token. The backend expires sessions by
// TTL; there is no server-side logout endpoint.
func (c *Client) Logout() error {
	return c.store.Clear()
}
