package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/sessionguard/core/authapi"
	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/idletimer"
	"github.com/dmitrymomot/sessionguard/core/interceptor"
	"github.com/dmitrymomot/sessionguard/core/logger"
	"github.com/dmitrymomot/sessionguard/core/revocation"
)

// Reason is the machine-readable cause handed to the end handler when a
// session terminates. Applications branch on it to pick the right
// post-logout message or redirect target.
type Reason string

const (
	ReasonSessionTimeout Reason = "session_timeout"
	ReasonSessionRevoked Reason = "session_revoked"
	ReasonAccountDeleted Reason = "account_deleted"
	ReasonLoggedOut      Reason = "logged_out"
	ReasonRefreshFailed  Reason = "refresh_failed"
)

// Backend is the full set of session operations the guard needs from the
// auth backend. *authapi.Client satisfies this interface.
type Backend interface {
	Refresh(ctx context.Context, refreshToken string) (authapi.Credentials, error)
	ValidateSession(ctx context.Context, refreshToken string) error
	Logout(ctx context.Context, refreshToken string) error
	GetSettings(ctx context.Context, httpClient *http.Client) (authapi.Settings, error)
}

// Guard owns the lifetime of one authenticated session: it builds the
// refreshing HTTP transport, arms the idle timer from the user's timeout
// preference, runs the revocation poller, and funnels every terminal
// event (timeout, revocation, refresh failure, explicit logout) into a
// single idempotent End. Construct it after a successful login and use
// its HTTPClient for all authenticated calls.
type Guard struct {
	backend Backend
	store   credentials.Store

	transport *interceptor.Transport
	client    *http.Client
	timer     *idletimer.Machine
	poller    *revocation.Poller
	listener  *revocation.Listener

	onEnd func(Reason)
	log   *slog.Logger

	// construction-time knobs consumed by New
	baseTransport http.RoundTripper
	refreshLead   time.Duration
	pollInterval  time.Duration
	listenerURL   string
	onWarning     func(remaining int)
	onTick        func(remaining int)
	timerOpts     []idletimer.Option

	started atomic.Bool
	ended   atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	end     sync.Once
}

// New wires a guard over the given backend and credential store. The
// loops do not run until Start.
func New(backend Backend, store credentials.Store, opts ...Option) (*Guard, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if store == nil {
		return nil, ErrNilStore
	}

	g := &Guard{
		backend:      backend,
		store:        store,
		onEnd:        func(Reason) {},
		onWarning:    func(int) {},
		onTick:       func(int) {},
		pollInterval: revocation.DefaultInterval,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(g)
	}

	transportOpts := []interceptor.Option{
		interceptor.WithLogger(g.log),
		interceptor.WithSessionEndHandler(func(err error) {
			if errors.Is(err, authapi.ErrAccountDeleted) {
				g.End(ReasonAccountDeleted)
				return
			}
			g.End(ReasonRefreshFailed)
		}),
	}
	if g.baseTransport != nil {
		transportOpts = append(transportOpts, interceptor.WithBase(g.baseTransport))
	}
	if g.refreshLead > 0 {
		transportOpts = append(transportOpts, interceptor.WithRefreshLead(g.refreshLead))
	}

	transport, err := interceptor.New(store, backend, transportOpts...)
	if err != nil {
		return nil, err
	}
	g.transport = transport
	g.client = &http.Client{Transport: transport}

	timerOpts := append([]idletimer.Option{
		idletimer.WithLogger(g.log),
		idletimer.WithWarningHandler(func(remaining int) { g.onWarning(remaining) }),
		idletimer.WithTickHandler(func(remaining int) { g.onTick(remaining) }),
		idletimer.WithExpireHandler(func() { g.End(ReasonSessionTimeout) }),
	}, g.timerOpts...)
	g.timer = idletimer.New(timerOpts...)

	poller, err := revocation.NewPoller(backend, store,
		revocation.WithInterval(g.pollInterval),
		revocation.WithRevokedHandler(func() { g.End(ReasonSessionRevoked) }),
		revocation.WithLogger(g.log),
	)
	if err != nil {
		return nil, err
	}
	g.poller = poller

	if g.listenerURL != "" {
		listener, err := revocation.NewListener(g.listenerURL, store,
			revocation.WithListenerRevokedHandler(func() { g.End(ReasonSessionRevoked) }),
			revocation.WithListenerLogger(g.log),
		)
		if err != nil {
			return nil, err
		}
		g.listener = listener
	}

	return g, nil
}

// Start fetches the idle timeout preference, arms the timer, and launches
// the revocation loops. A settings fetch failure is not fatal: the timer
// stays unarmed and revocation monitoring still runs. Returns
// ErrSessionEnded when the fetch itself terminated the session.
func (g *Guard) Start(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if _, err := g.store.Get(ctx); err != nil {
		g.started.Store(false)
		return err
	}

	settings, err := g.backend.GetSettings(ctx, g.client)
	switch {
	case err != nil:
		g.log.WarnContext(ctx, "failed to fetch session settings, idle timeout disarmed",
			logger.Component("guard"),
			logger.Error(err),
		)
	default:
		g.timer.Arm(time.Duration(settings.SessionTimeoutMinutes) * time.Minute)
	}

	// The settings fetch goes through the refreshing transport, so it can
	// itself consume the session (a failed refresh fires End). Launching
	// the loops after that would leave them ticking until process exit.
	if g.ended.Load() {
		return ErrSessionEnded
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		_ = g.poller.Start(loopCtx)
	}()

	if g.listener != nil {
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			_ = g.listener.Start(loopCtx)
		}()
	}

	g.log.InfoContext(ctx, "session guard started",
		logger.Component("guard"),
		logger.Interval(g.pollInterval),
	)
	return nil
}

// HTTPClient returns the client whose transport attaches access tokens
// and transparently refreshes on expiry. All authenticated backend calls
// go through it.
func (g *Guard) HTTPClient() *http.Client { return g.client }

// Transport exposes the refreshing round tripper for callers that build
// their own http.Client.
func (g *Guard) Transport() http.RoundTripper { return g.transport }

// Activity records user activity, deferring the idle timeout. Safe to
// call from any goroutine at any frequency; writes are throttled
// internally.
func (g *Guard) Activity() { g.timer.Touch() }

// ContinueSession dismisses an active timeout warning and re-arms the
// full idle timeout. Returns false when no warning is pending.
func (g *Guard) ContinueSession() bool { return g.timer.Continue() }

// IdleState reports the idle timer's current state.
func (g *Guard) IdleState() idletimer.State { return g.timer.State() }

// WarningRemaining reports the seconds left in the warning countdown.
func (g *Guard) WarningRemaining() int { return g.timer.Remaining() }

// ApplySettings re-arms the idle timer with a changed timeout preference.
// Zero or negative minutes disable idle timeout for the session.
func (g *Guard) ApplySettings(timeoutMinutes int) {
	g.ApplyTimeout(time.Duration(timeoutMinutes) * time.Minute)
}

// ApplyTimeout re-arms the idle timer with an arbitrary timeout duration.
// Non-positive durations disable idle timeout for the session.
func (g *Guard) ApplyTimeout(timeout time.Duration) {
	if timeout <= 0 {
		g.timer.Arm(0)
		return
	}
	g.timer.Arm(timeout)
}

// Logout invalidates the session on the backend, then terminates locally.
// The backend call is best effort: a network failure still ends the local
// session.
func (g *Guard) Logout(ctx context.Context) {
	if sess, err := g.store.Get(ctx); err == nil {
		if err := g.backend.Logout(ctx, sess.RefreshToken); err != nil {
			g.log.WarnContext(ctx, "backend logout failed, ending session locally",
				logger.Component("guard"),
				logger.Error(err),
			)
		}
	}
	g.End(ReasonLoggedOut)
}

// End terminates the session: stops the idle timer and revocation loops,
// clears the credential store, and invokes the end handler with the
// reason. Idempotent; only the first caller's reason is reported, and
// late timer or poller fires after teardown are no-ops.
func (g *Guard) End(reason Reason) {
	g.end.Do(func() {
		g.ended.Store(true)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		g.timer.Stop()

		if g.cancel != nil {
			g.cancel()
			g.wg.Wait()
		}

		if err := g.store.Clear(ctx); err != nil {
			g.log.ErrorContext(ctx, "failed to clear credential store",
				logger.Component("guard"),
				logger.Error(err),
			)
		}

		g.log.InfoContext(ctx, "session ended",
			logger.Component("guard"),
			logger.Reason(string(reason)),
		)

		g.onEnd(reason)
	})
}
