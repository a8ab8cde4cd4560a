package login

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/sessionguard/core/authapi"
	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/logger"
	"github.com/dmitrymomot/sessionguard/pkg/fingerprint"
)

// Authenticator performs the backend login operations. *authapi.Client
// satisfies this interface.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (authapi.LoginResult, error)
	ForceLogin(ctx context.Context, email, password string) (authapi.Credentials, error)
}

// Negotiator drives the login flow, including the single-active-session
// conflict negotiation. The credential store is written only after the
// backend accepts a login or force-login; a rejected or abandoned attempt
// leaves the store exactly as it was.
type Negotiator struct {
	auth        Authenticator
	store       credentials.Store
	fingerprint string
	log         *slog.Logger
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithFingerprint overrides the locally generated device fingerprint
// recorded in stored sessions.
func WithFingerprint(fp string) Option {
	return func(n *Negotiator) {
		if fp != "" {
			n.fingerprint = fp
		}
	}
}

// WithLogger configures structured logging.
func WithLogger(log *slog.Logger) Option {
	return func(n *Negotiator) {
		if log != nil {
			n.log = log
		}
	}
}

// NewNegotiator creates a login negotiator over the given authenticator
// and store.
func NewNegotiator(auth Authenticator, store credentials.Store, opts ...Option) (*Negotiator, error) {
	if auth == nil {
		return nil, ErrNilAuthenticator
	}
	if store == nil {
		return nil, ErrNilStore
	}

	n := &Negotiator{
		auth:        auth,
		store:       store,
		fingerprint: fingerprint.Generate(),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// Login authenticates against the backend. On success the session is
// persisted and returned. When another device holds the active session,
// Login returns a Conflict handle instead; nothing is stored until the
// caller resolves it with Force. Business rejections (wrong password,
// locked account) come back as authapi sentinel errors.
func (n *Negotiator) Login(ctx context.Context, email, password string) (credentials.Session, *Conflict, error) {
	result, err := n.auth.Login(ctx, email, password)
	if err != nil {
		return credentials.Session{}, nil, err
	}

	if result.Conflict != nil {
		n.log.InfoContext(ctx, "login blocked by active session elsewhere",
			logger.Component("login"),
			slog.String("device", result.Conflict.Device),
		)
		return credentials.Session{}, &Conflict{
			Offer:    *result.Conflict,
			n:        n,
			email:    email,
			password: password,
		}, nil
	}

	sess, err := n.persist(ctx, *result.Credentials)
	if err != nil {
		return credentials.Session{}, nil, err
	}

	n.log.InfoContext(ctx, "login succeeded",
		logger.Component("login"),
		logger.UserID(sess.UserID),
	)
	return sess, nil, nil
}

// persist wholesale-writes the fresh token pair into the store.
func (n *Negotiator) persist(ctx context.Context, creds authapi.Credentials) (credentials.Session, error) {
	sess := credentials.New(creds.UserID, creds.AccessToken, creds.RefreshToken, n.fingerprint)
	if err := n.store.Set(ctx, sess); err != nil {
		return credentials.Session{}, errors.Join(ErrPersistFailed, err)
	}
	return sess, nil
}

// Conflict is the pending decision returned when the backend reports an
// active session on another device. The caller shows the Offer to the
// user, then either forces the takeover or cancels. A handle is
// single-use: the first Force or Cancel consumes it.
type Conflict struct {
	// Offer describes the existing session the user would be evicting.
	Offer authapi.Offer

	n        *Negotiator
	email    string
	password string
	consumed atomic.Bool
}

// Force evicts the existing session and completes the login with the
// originally supplied credentials. On success the fresh session is
// persisted and returned; on failure the store is untouched. The handle
// is consumed either way.
func (c *Conflict) Force(ctx context.Context) (credentials.Session, error) {
	if !c.consumed.CompareAndSwap(false, true) {
		return credentials.Session{}, ErrConflictConsumed
	}
	defer c.discard()

	creds, err := c.n.auth.ForceLogin(ctx, c.email, c.password)
	if err != nil {
		return credentials.Session{}, err
	}

	sess, err := c.n.persist(ctx, creds)
	if err != nil {
		return credentials.Session{}, err
	}

	c.n.log.InfoContext(ctx, "force login succeeded",
		logger.Component("login"),
		logger.UserID(sess.UserID),
	)
	return sess, nil
}

// Cancel abandons the login attempt. The store is untouched and the
// retained password copy is discarded.
func (c *Conflict) Cancel() {
	if c.consumed.CompareAndSwap(false, true) {
		c.discard()
	}
}

// discard drops the credential copies held for a potential Force.
func (c *Conflict) discard() {
	c.email = ""
	c.password = ""
}
