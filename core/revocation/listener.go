package revocation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/logger"
)

// revokedEvent is the push message announcing session revocation.
type revokedEvent struct {
	Event string `json:"event"`
}

// EventSessionRevoked is the event name carried by a revocation push.
const EventSessionRevoked = "session_revoked"

// Listener subscribes to a websocket channel for revocation pushes,
// replacing the poll delay with immediate delivery. The termination
// contract is identical to the poller's: a revocation event clears the
// store and fires the handler once, no retry, while transport failures
// only trigger a reconnect. Deployments keep the poller running alongside
// as the fallback for missed pushes.
type Listener struct {
	url            string
	dialer         *websocket.Dialer
	store          credentials.Store
	reconnectDelay time.Duration
	onRevoked      func()
	log            *slog.Logger

	revoked sync.Once
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithReconnectDelay sets the wait between reconnect attempts.
func WithReconnectDelay(d time.Duration) ListenerOption {
	return func(l *Listener) {
		if d > 0 {
			l.reconnectDelay = d
		}
	}
}

// WithListenerRevokedHandler registers the callback fired once on a
// revocation event.
func WithListenerRevokedHandler(fn func()) ListenerOption {
	return func(l *Listener) {
		if fn != nil {
			l.onRevoked = fn
		}
	}
}

// WithListenerLogger configures structured logging.
func WithListenerLogger(log *slog.Logger) ListenerOption {
	return func(l *Listener) {
		if log != nil {
			l.log = log
		}
	}
}

// NewListener creates a push listener for the given websocket URL
// (ws:// or wss://).
func NewListener(url string, store credentials.Store, opts ...ListenerOption) (*Listener, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if store == nil {
		return nil, ErrNilStore
	}

	l := &Listener{
		url:            url,
		dialer:         websocket.DefaultDialer,
		store:          store,
		reconnectDelay: 5 * time.Second,
		onRevoked:      func() {},
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Start connects and consumes revocation events until the context is
// cancelled. Connection drops trigger reconnects after the configured
// delay; they never terminate the session.
func (l *Listener) Start(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := l.listen(ctx); err != nil {
			l.log.DebugContext(ctx, "revocation listener disconnected",
				logger.Component("revocation"),
				logger.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.reconnectDelay):
		}
	}
}

// listen runs one websocket connection to completion.
func (l *Listener) listen(ctx context.Context) error {
	header := http.Header{}
	if sess, err := l.store.Get(ctx); err == nil {
		header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage on context cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event revokedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue // ignore malformed frames
		}

		if event.Event == EventSessionRevoked {
			l.terminate(ctx)
		}
	}
}

// terminate mirrors the poller's authoritative contract: clear once, fire
// the handler once. The handler runs on its own goroutine: handlers
// typically tear down the listener, and that teardown must not wait on
// the read loop the verdict arrived on.
func (l *Listener) terminate(ctx context.Context) {
	l.revoked.Do(func() {
		if err := l.store.Clear(ctx); err != nil {
			l.log.ErrorContext(ctx, "failed to clear credential store",
				logger.Component("revocation"),
				logger.Error(err),
			)
		}

		l.log.InfoContext(ctx, "session revoked elsewhere (push)",
			logger.Component("revocation"),
			logger.Reason("session_revoked"),
		)

		go l.onRevoked()
	})
}
