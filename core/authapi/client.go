package authapi

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

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// Backend endpoint paths. The login family uses unauthorized-as-business-failure
// semantics, so these paths belong in the transport interceptor's exempt set.
const (
	PathLogin      = "/auth/login"
	PathForceLogin = "/auth/force-login"
	PathRefresh    = "/auth/refresh"
	PathValidate   = "/auth/validate"
	PathLogout     = "/auth/logout"
	PathSettings   = "/settings"
)

// Client is a typed HTTP client for the session/auth backend. All methods
// translate the backend's status contract into the package's error taxonomy;
// callers never inspect HTTP statuses themselves.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	fingerprint string
	device      string
	log         *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The provided client
// must NOT carry the sessionguard transport interceptor: auth endpoints
// manage credentials themselves.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDeviceIdentity attaches the local device fingerprint and a
// human-readable device description to login calls, so the backend can
// describe this device in conflict offers shown elsewhere.
func WithDeviceIdentity(fingerprint, device string) Option {
	return func(c *Client) {
		c.fingerprint = fingerprint
		c.device = device
	}
}

// WithLogger configures structured logging for backend calls.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a backend client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("authapi: base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config provides environment-based configuration for the backend client.
type Config struct {
	BaseURL string        `env:"AUTH_API_BASE_URL,required"`
	Timeout time.Duration `env:"AUTH_API_TIMEOUT" envDefault:"15s"`
}

// NewFromConfig creates a backend client from configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	allOpts := append([]Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}, opts...)
	return New(cfg.BaseURL, allOpts...)
}

// Login attempts to establish a session. The result carries either fresh
// credentials or a conflict offer; business rejections come back as typed
// errors (ErrInvalidCredentials, ErrUnverifiedAccount, ErrAccountLocked).
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	return c.login(ctx, PathLogin, email, password, true)
}

// ForceLogin evicts the account's existing session and establishes a new one
// on this device. The backend invalidates the other device's refresh
// credential; its revocation poll detects that on the next tick.
func (c *Client) ForceLogin(ctx context.Context, email, password string) (Credentials, error) {
	result, err := c.login(ctx, PathForceLogin, email, password, false)
	if err != nil {
		return Credentials{}, err
	}
	return *result.Credentials, nil
}

func (c *Client) login(ctx context.Context, path, email, password string, allowConflict bool) (LoginResult, error) {
	req := loginRequest{
		Email:       email,
		Password:    password,
		Fingerprint: c.fingerprint,
		Device:      c.device,
	}

	status, body, err := c.post(ctx, path, req)
	if err != nil {
		return LoginResult{}, err
	}

	switch status {
	case http.StatusOK:
		var creds Credentials
		if err := json.Unmarshal(body, &creds); err != nil {
			return LoginResult{}, errors.Join(ErrTransport, err)
		}
		return LoginResult{Credentials: &creds}, nil

	case http.StatusConflict:
		if !allowConflict {
			// Force-login must supersede the other session; a conflict here
			// means the backend broke its contract.
			return LoginResult{}, fmt.Errorf("%w: conflict on force login", ErrUnexpectedStatus)
		}
		var conflict conflictResponse
		if err := json.Unmarshal(body, &conflict); err != nil {
			return LoginResult{}, errors.Join(ErrTransport, err)
		}
		offer := conflict.ExistingSession
		return LoginResult{Conflict: &offer}, nil

	default:
		return LoginResult{}, c.asError(status, body)
	}
}

// Refresh exchanges the refresh credential for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	status, body, err := c.post(ctx, PathRefresh, tokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return Credentials{}, err
	}

	if status != http.StatusOK {
		return Credentials{}, c.asError(status, body)
	}

	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return Credentials{}, errors.Join(ErrTransport, err)
	}
	return creds, nil
}

// ValidateSession asks the backend whether the refresh credential is still
// valid. ErrUnauthorized means the session was revoked (typically by a
// force-login elsewhere) and is authoritative. Any other error is transient
// and must not terminate the session.
func (c *Client) ValidateSession(ctx context.Context, refreshToken string) error {
	status, body, err := c.post(ctx, PathValidate, tokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return c.asError(status, body)
	}
	return nil
}

// Logout invalidates the refresh credential server-side. Best effort: the
// local store is cleared regardless of the outcome.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	status, body, err := c.post(ctx, PathLogout, tokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return c.asError(status, body)
	}
	return nil
}

// GetSettings fetches the user's session preferences. Requires a valid
// access credential, so the HTTP client here is typically the intercepted
// one owned by the application.
func (c *Client) GetSettings(ctx context.Context, httpClient *http.Client) (Settings, error) {
	if httpClient == nil {
		httpClient = c.httpClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathSettings, nil)
	if err != nil {
		return Settings{}, errors.Join(ErrTransport, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Settings{}, errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Settings{}, errors.Join(ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Settings{}, c.asError(resp.StatusCode, body)
	}

	var settings Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		return Settings{}, errors.Join(ErrTransport, err)
	}
	return settings, nil
}

// post sends a JSON request and returns the raw status and body.
// Network-level failures come back wrapped in ErrTransport.
func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, errors.Join(ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, errors.Join(ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "backend call failed",
			logger.Endpoint(path),
			logger.Error(err),
		)
		return 0, nil, errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Join(ErrTransport, err)
	}

	c.log.DebugContext(ctx, "backend call",
		logger.Endpoint(path),
		logger.StatusCode(resp.StatusCode),
		logger.Elapsed(start),
	)

	return resp.StatusCode, body, nil
}

// asError maps a non-success status and body to the package error taxonomy.
// The body's error code takes precedence over the bare status so backends
// can distinguish business rejections sharing a status.
func (c *Client) asError(status int, body []byte) error {
	var payload errorResponse
	_ = json.Unmarshal(body, &payload) // tolerate empty or non-JSON bodies

	switch payload.Code {
	case "invalid_credentials":
		return ErrInvalidCredentials
	case "unverified_account":
		return ErrUnverifiedAccount
	case "account_locked":
		return ErrAccountLocked
	case "account_deleted":
		return ErrAccountDeleted
	}

	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrUnverifiedAccount
	case http.StatusLocked:
		return ErrAccountLocked
	case http.StatusGone:
		return ErrAccountDeleted
	default:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}
}
