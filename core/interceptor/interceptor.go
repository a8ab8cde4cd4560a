package interceptor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/sessionguard/core/authapi"
	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/logger"
)

// Refresher exchanges a refresh credential for a new token pair.
// *authapi.Client satisfies this interface.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (authapi.Credentials, error)
}

// Transport is an http.RoundTripper decorator that keeps requests
// authenticated. It attaches the current access credential as a bearer
// token and, when a non-exempt endpoint answers 401, performs exactly one
// silent refresh-and-retry before surfacing the response.
//
// Exempt endpoints (login, password change, re-auth, 2FA) use 401 as a
// business failure, not as "credential expired"; their responses pass
// through unchanged so callers can distinguish "wrong password" from
// "session expired".
//
// Concurrent 401s against the same stale credential collapse into a single
// refresh flight, so a burst of parallel requests costs one backend
// exchange.
type Transport struct {
	base      http.RoundTripper
	store     credentials.Store
	refresher Refresher
	exempt    func(*http.Request) bool

	// refreshLead, when positive, refreshes JWT access tokens this long
	// before their exp claim instead of waiting for the 401.
	refreshLead time.Duration

	onSessionEnd func(error)
	flight       singleflight.Group
	log          *slog.Logger
}

// New creates an authenticated transport over the given store and refresher.
func New(store credentials.Store, refresher Refresher, opts ...Option) (*Transport, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if refresher == nil {
		return nil, ErrNilRefresher
	}

	t := &Transport{
		base:         http.DefaultTransport,
		store:        store,
		refresher:    refresher,
		exempt:       PathPrefixExempt(DefaultExemptPaths()...),
		onSessionEnd: func(error) {},
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Client returns an *http.Client using this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	sess, err := t.store.Get(ctx)
	if err != nil {
		if errors.Is(err, credentials.ErrNoSession) {
			// Unauthenticated request passes through untouched.
			return t.base.RoundTrip(req)
		}
		return nil, err
	}

	exempt := t.exempt(req)

	if !exempt && t.shouldRefreshEarly(sess.AccessToken) {
		// Pre-expiry refresh. Failure here is not fatal: the 401 path
		// below remains the authoritative fallback.
		if refreshed, err := t.refresh(ctx, sess); err == nil {
			sess = refreshed
		}
	}

	resp, err := t.base.RoundTrip(t.withBearer(req, sess.AccessToken))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || exempt || sess.RefreshToken == "" {
		return resp, nil
	}

	refreshed, refreshErr := t.refresh(ctx, sess)
	if refreshErr != nil {
		// Hard session end: a rejected or unreachable refresh credential
		// means the session cannot be recovered locally.
		if clearErr := t.store.Clear(ctx); clearErr != nil {
			t.log.ErrorContext(ctx, "failed to clear credential store",
				logger.Component("interceptor"),
				logger.Error(clearErr),
			)
		}
		t.log.InfoContext(ctx, "session ended: refresh failed",
			logger.Component("interceptor"),
			logger.Endpoint(req.URL.Path),
			logger.Error(refreshErr),
		)
		t.onSessionEnd(refreshErr)
		return resp, nil
	}

	retry, ok := t.rewind(req)
	if !ok {
		// Body cannot be replayed; surface the original 401 rather than
		// resending a truncated request.
		return resp, nil
	}

	// The original response is replaced by the retry; release it.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	t.log.DebugContext(ctx, "retrying request with refreshed credential",
		logger.Component("interceptor"),
		logger.Endpoint(req.URL.Path),
	)

	// Exactly one retry per original request. A second 401 is returned
	// as-is: no recursion, no retry loops.
	return t.base.RoundTrip(t.withBearer(retry, refreshed.AccessToken))
}

// refresh exchanges the session's refresh credential for a new pair and
// stores it wholesale. Concurrent callers holding the same stale credential
// share one flight and one result.
func (t *Transport) refresh(ctx context.Context, sess credentials.Session) (credentials.Session, error) {
	v, err, _ := t.flight.Do(sess.RefreshToken, func() (any, error) {
		// Another flight may have rotated the credential already.
		if current, err := t.store.Get(ctx); err == nil && current.RefreshToken != sess.RefreshToken {
			return current, nil
		}

		creds, err := t.refresher.Refresh(ctx, sess.RefreshToken)
		if err != nil {
			return credentials.Session{}, err
		}

		rotated := sess.WithTokens(creds.AccessToken, creds.RefreshToken)
		if err := t.store.Set(ctx, rotated); err != nil {
			return credentials.Session{}, err
		}
		return rotated, nil
	})
	if err != nil {
		return credentials.Session{}, err
	}
	return v.(credentials.Session), nil
}

// withBearer returns a clone carrying the Authorization header.
// The original request is never mutated, per the RoundTripper contract.
func (t *Transport) withBearer(req *http.Request, accessToken string) *http.Request {
	clone := req.Clone(req.Context())
	if accessToken != "" {
		clone.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return clone
}

// rewind prepares a replayable copy of the request for the retry.
// Requests without a body always rewind; requests with a body need GetBody.
func (t *Transport) rewind(req *http.Request) (*http.Request, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}

	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, true
}
